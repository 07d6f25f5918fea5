package api

import (
	"encoding/json"
	"net/http"

	"skypark/internal/entities"
	apperrors "skypark/internal/errors"
	"skypark/internal/service"

	"github.com/gorilla/mux"
)

type UserBookingHandler struct {
	Service *service.BookingService
}

func NewUserBookingHandler(svc *service.BookingService) *UserBookingHandler {
	return &UserBookingHandler{Service: svc}
}

func (h *UserBookingHandler) ListFlights(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "departure"
	}
	flights, err := h.Service.ListFlights(date, direction)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, flights)
}

func (h *UserBookingHandler) ListAvailableSlots(w http.ResponseWriter, r *http.Request) {
	var req AvailableSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.ListAvailableSlots(req.FlightDate, req.FlightTime, req.AirlineCode, req.FlightNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *UserBookingHandler) CheckCapacity(w http.ResponseWriter, r *http.Request) {
	var req CapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	report, err := h.Service.CheckCapacity(req.StartDate, req.EndDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *UserBookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	quote, err := h.Service.Quote(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, quote)
}

func (h *UserBookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.OverridePricePence = nil // staff only
	session, err := h.Service.CreateBooking(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, session)
}

func (h *UserBookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req BookingLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	booking, err := h.Service.GetBooking(code, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if booking == nil {
		writeServiceError(w, apperrors.ErrNotFound("Booking not found"))
		return
	}
	writeJSON(w, booking)
}

func (h *UserBookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	cancelled, err := h.Service.CancelBooking(code)
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

func (h *UserBookingHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Service.GetPrices()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, prices)
}
