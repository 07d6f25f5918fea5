package api

import (
	"encoding/json"
	"net/http"

	"skypark/internal/entities"
	apperrors "skypark/internal/errors"
	"skypark/internal/service"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Admin    *service.AdminService
	Bookings *service.BookingService
}

func NewAdminHandler(admin *service.AdminService, bookings *service.BookingService) *AdminHandler {
	return &AdminHandler{Admin: admin, Bookings: bookings}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	list, err := h.Admin.ListBookings(date, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, list)
}

// CreateBooking is the staff path: it never fails on full or phone-only
// slots, but the lot capacity ceiling still applies.
func (h *AdminHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	booking, err := h.Bookings.CreateAdminBooking(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, booking)
}

func (h *AdminHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	cancelled, err := h.Bookings.CancelBooking(code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !cancelled {
		writeServiceError(w, apperrors.ErrNotFound("Booking not found or already cancelled"))
		return
	}
	writeJSON(w, map[string]string{"message": "Booking cancelled"})
}

func (h *AdminHandler) CheckCapacity(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	report, err := h.Bookings.CheckCapacity(start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *AdminHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Admin.ListPrices()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, prices)
}

func (h *AdminHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Admin.UpdatePackagePrice(req.Package, req.DurationTier, req.PricePence); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Price updated"})
}
