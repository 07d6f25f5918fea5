package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"skypark/internal/db"
	"skypark/internal/entities"
	apperrors "skypark/internal/errors"
	"skypark/internal/repository"
	"skypark/internal/timeslot"
)

// PaymentProvider abstracts the checkout/refund surface of the payment
// gateway so the orchestrator can be exercised without live Stripe calls.
type PaymentProvider interface {
	CreateCheckoutSession(amountPence int64, currency, bookingCode, customerEmail string) (url, sessionID string, err error)
	RefundBySessionID(sessionID string) error
}

// Sender delivers booking notifications after a state change has committed.
type Sender interface {
	SendBookingEmail(b *db.Booking, status string)
	SendBookingSMS(b *db.Booking, status string)
}

// BookingService sequences time derivation, slot allocation, the capacity
// ledger and persistence into atomic create/cancel operations. A single
// process-wide mutex serializes all booking mutations; at a 60-space lot
// coarse single-writer locking is plenty.
type BookingService struct {
	mu sync.Mutex

	flights  repository.FlightStore
	store    repository.Store
	quoter   *PriceQuoter
	alloc    *SlotAllocator
	ledger   *CapacityLedger
	payments PaymentProvider
	sender   Sender
	now      func() time.Time
}

func NewBookingService(flights repository.FlightStore, store repository.Store, prices repository.PriceStore, payments PaymentProvider, sender Sender) *BookingService {
	return &BookingService{
		flights:  flights,
		store:    store,
		quoter:   NewPriceQuoter(prices),
		alloc:    NewSlotAllocator(store),
		ledger:   NewCapacityLedger(store),
		payments: payments,
		sender:   sender,
		now:      time.Now,
	}
}

func newBookingCode(now time.Time) string {
	return fmt.Sprintf("%08X", now.UnixNano()%0xFFFFFFFF)
}

// ListFlights exposes the schedule for the flight picker.
func (s *BookingService) ListFlights(flightDate, direction string) ([]db.FlightSchedule, error) {
	date, err := timeslot.ParseDate(flightDate)
	if err != nil {
		return nil, err
	}
	if direction != "departure" && direction != "arrival" {
		return nil, &apperrors.ValidationError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", direction)}
	}
	return s.flights.ListFlights(date, direction)
}

// ListAvailableSlots computes both drop-off windows for a flight and filters
// out anything not currently bookable. When the caller omits the flight
// time, the scheduled time from the flight feed is used.
func (s *BookingService) ListAvailableSlots(flightDate, flightTime, airlineCode, flightNumber string) (*entities.AvailableSlotsResponse, error) {
	date, err := timeslot.ParseDate(flightDate)
	if err != nil {
		return nil, err
	}
	flight, err := s.lookupFlight(date, airlineCode, flightNumber, "flight")
	if err != nil {
		return nil, err
	}
	if flightTime == "" {
		flightTime = flight.ScheduledTime
	}
	return s.alloc.ListAvailableSlots(date, flightTime, airlineCode, flightNumber, flight.CapacityTier)
}

// CheckCapacity reports per-day lot occupancy over an inclusive date range.
func (s *BookingService) CheckCapacity(startDate, endDate string) (*entities.CapacityReport, error) {
	start, err := timeslot.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := timeslot.ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	return s.ledger.CheckRange(start, end)
}

// Quote previews the derived drop-off/pickup windows and the price for a
// prospective booking without reserving anything.
func (s *BookingService) Quote(req *entities.BookingRequest) (*entities.QuoteResponse, error) {
	flightDate, err := timeslot.ParseDate(req.FlightDate)
	if err != nil {
		return nil, err
	}
	slotType, err := timeslot.ParseSlotType(req.SlotType)
	if err != nil {
		return nil, err
	}
	flight, err := s.lookupFlight(flightDate, req.AirlineCode, req.FlightNumber, "flight")
	if err != nil {
		return nil, err
	}
	dropoffSummary, err := timeslot.SummarizeDropoff(flightDate, flight.ScheduledTime, slotType)
	if err != nil {
		return nil, err
	}

	returnDate, err := timeslot.ParseDate(req.ReturnFlightDate)
	if err != nil {
		return nil, err
	}
	arrivalTime, err := s.arrivalTimeFor(req)
	if err != nil {
		return nil, err
	}
	pickupSummary, err := timeslot.SummarizePickup(returnDate, arrivalTime)
	if err != nil {
		return nil, err
	}

	dropoffDate, err := timeslot.ParseDate(dropoffSummary.Date)
	if err != nil {
		return nil, err
	}
	price, err := s.quoter.Quote(req.Package, dropoffDate, nil)
	if err != nil {
		return nil, err
	}
	return &entities.QuoteResponse{
		Dropoff:      dropoffSummary,
		Pickup:       pickupSummary,
		DurationTier: DurationTier(s.now(), dropoffDate),
		PricePence:   price,
	}, nil
}

// CreateBooking runs the full customer flow: derive the slot, verify slot
// and lot availability, price, then allocate and persist as one
// transactional unit. The checkout session is opened only after the
// reservation commits, so a failed create never leaves a payable session
// behind. The booking stays pending until the payment webhook confirms it; a
// pending booking still holds its slot.
func (s *BookingService) CreateBooking(req *entities.BookingRequest) (*entities.StripeSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, flight, key, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}

	price, err := s.quoter.Quote(req.Package, booking.DropoffDate, nil)
	if err != nil {
		return nil, err
	}
	booking.PricePence = price

	err = s.store.Transact(func(tx repository.Store) error {
		alloc := NewSlotAllocator(tx)
		ledger := NewCapacityLedger(tx)

		state, err := alloc.UnitState(key, flight.CapacityTier)
		if err != nil {
			return err
		}
		switch state {
		case UnitDisabled:
			return &apperrors.SlotDisabledError{Flight: key.Flight}
		case UnitFull:
			return &apperrors.SlotUnavailableError{SlotKey: key.String()}
		}

		report, err := ledger.CheckRange(booking.DropoffDate, booking.PickupDate)
		if err != nil {
			return err
		}
		if !report.AllAvailable {
			return &apperrors.CapacityExceededError{FullDays: FullDays(report)}
		}

		if err := alloc.Book(key, flight.CapacityTier); err != nil {
			var full *apperrors.SlotFullError
			if errors.As(err, &full) {
				return &apperrors.SlotUnavailableError{SlotKey: full.SlotKey}
			}
			return err
		}
		if err := ledger.ApplyDelta(booking.DropoffDate, booking.PickupDate, 1); err != nil {
			return err
		}
		return tx.CreateBooking(booking)
	})
	if err != nil {
		return nil, err
	}

	var sessionURL string
	if s.payments != nil {
		amount := int64(booking.PricePence)
		if req.PaymentMethod == "on_arrival" {
			// 30% deposit online, balance at the kiosk.
			amount = amount * 30 / 100
		}
		url, sessionID, err := s.payments.CreateCheckoutSession(amount, "gbp", booking.Code, booking.CustomerEmail)
		if err != nil {
			// The customer never got a payment page, so the reservation
			// cannot complete; undo it.
			if rbErr := s.releaseBooking(booking); rbErr != nil {
				log.Printf("Failed to release booking %s after checkout error: %v", booking.Code, rbErr)
			}
			return nil, fmt.Errorf("error creating checkout session for booking %s: %w", booking.Code, err)
		}
		sessionURL = url
		booking.StripeSessionID = sessionID
		if err := s.store.UpdateBookingSession(booking.ID, sessionID); err != nil {
			return nil, err
		}
	}

	log.Printf("Created booking %s for flight %s, slot %s", booking.Code, key.Flight, booking.SlotKey)
	return &entities.StripeSessionResponse{
		Code:      booking.Code,
		URL:       sessionURL,
		SessionID: booking.StripeSessionID,
	}, nil
}

// CreateAdminBooking is the staff flow. It books against a synthetic,
// always-unique slot key, so full or phone-only flights never block it, but
// the lot-wide capacity ceiling still applies: the physical constraint is
// real regardless of booking channel.
func (s *BookingService) CreateAdminBooking(req *entities.BookingRequest) (*entities.BookingResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, _, _, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}
	booking.SlotKey = timeslot.AdminSlotKey(req.AirlineCode, req.FlightNumber, booking.Code)
	booking.Status = db.StatusConfirmed

	price, err := s.quoter.Quote(req.Package, booking.DropoffDate, req.OverridePricePence)
	if err != nil {
		return nil, err
	}
	booking.PricePence = price

	err = s.store.Transact(func(tx repository.Store) error {
		alloc := NewSlotAllocator(tx)
		ledger := NewCapacityLedger(tx)

		report, err := ledger.CheckRange(booking.DropoffDate, booking.PickupDate)
		if err != nil {
			return err
		}
		if !report.AllAvailable {
			return &apperrors.CapacityExceededError{FullDays: FullDays(report)}
		}

		if err := alloc.BookSynthetic(booking.SlotKey); err != nil {
			return err
		}
		if err := ledger.ApplyDelta(booking.DropoffDate, booking.PickupDate, 1); err != nil {
			return err
		}
		return tx.CreateBooking(booking)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Created admin booking %s with slot key %s", booking.Code, booking.SlotKey)
	return bookingResponse(booking), nil
}

// CancelBooking releases exactly the resources the booking reserved: the
// recorded slot key and the originally recorded stay range, never a
// recomputation from live schedule data. Unknown or already-cancelled codes
// return false without error.
func (s *BookingService) CancelBooking(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.store.GetBookingByCode(code)
	if err != nil {
		return false, err
	}
	if booking == nil {
		return false, nil
	}
	if booking.Status == db.StatusCancelled || booking.Status == db.StatusRefunded {
		return false, nil
	}

	if err := s.releaseBooking(booking); err != nil {
		return false, err
	}

	if s.payments != nil && booking.StripeSessionID != "" && booking.PaymentStatus == db.PaymentSucceeded {
		if err := s.payments.RefundBySessionID(booking.StripeSessionID); err != nil {
			log.Printf("Booking %s cancelled but refund failed: %v", booking.Code, err)
		}
	}

	booking.Status = db.StatusCancelled
	s.notify(booking, db.StatusCancelled)
	log.Printf("Cancelled booking %s, released slot %s", booking.Code, booking.SlotKey)
	return true, nil
}

// releaseBooking reverses exactly what the booking reserved: its recorded
// slot key, its recorded stay range, and the row status. Callers hold the
// allocation mutex.
func (s *BookingService) releaseBooking(booking *db.Booking) error {
	return s.store.Transact(func(tx repository.Store) error {
		alloc := NewSlotAllocator(tx)
		ledger := NewCapacityLedger(tx)

		if err := alloc.Release(booking.SlotKey); err != nil {
			return err
		}
		if err := ledger.ApplyDelta(booking.DropoffDate, booking.PickupDate, -1); err != nil {
			return err
		}
		return tx.UpdateBookingStatus(booking.ID, db.StatusCancelled)
	})
}

// GetBooking looks a booking up by its code, verifying the customer email.
func (s *BookingService) GetBooking(code, email string) (*entities.BookingResponse, error) {
	booking, err := s.store.GetBookingByCode(code)
	if err != nil {
		return nil, err
	}
	if booking == nil || !strings.EqualFold(booking.CustomerEmail, email) {
		return nil, nil
	}
	return bookingResponse(booking), nil
}

// GetBookingBySessionID serves the post-checkout confirmation page.
func (s *BookingService) GetBookingBySessionID(sessionID string) (*entities.BookingResponse, error) {
	booking, err := s.store.GetBookingByStripeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, nil
	}
	return bookingResponse(booking), nil
}

// ConfirmBookingBySessionID transitions pending → confirmed on payment
// success and fires the confirmation notifications. Only pending bookings
// confirm: a webhook that lands after the booking was cancelled (or a
// replayed delivery) is ignored, since the slot and ledger days are already
// released and a cancelled booking must never come back to life. The payment
// itself is then settled by the refund path.
func (s *BookingService) ConfirmBookingBySessionID(sessionID, paymentIntentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.store.GetBookingByStripeSessionID(sessionID)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("no booking found for session %s", sessionID)
	}
	if booking.Status != db.StatusPending {
		log.Printf("Ignoring payment confirmation for booking %s in status %s", booking.Code, booking.Status)
		return nil
	}
	if err := s.store.UpdateBookingPayment(booking.ID, db.StatusConfirmed, db.PaymentSucceeded, paymentIntentID); err != nil {
		return err
	}
	booking.Status = db.StatusConfirmed
	s.notify(booking, db.StatusConfirmed)
	return nil
}

// MarkRefundedBySessionID records a completed refund. Slot and ledger
// reversal happen on the explicit cancel path, never here, and a refund
// notification for a payment that never succeeded is ignored.
func (s *BookingService) MarkRefundedBySessionID(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.store.GetBookingByStripeSessionID(sessionID)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("no booking found for session %s", sessionID)
	}
	if booking.PaymentStatus != db.PaymentSucceeded {
		log.Printf("Ignoring refund notification for booking %s with payment status %s", booking.Code, booking.PaymentStatus)
		return nil
	}
	return s.store.UpdateBookingPayment(booking.ID, db.StatusRefunded, db.PaymentRefunded, booking.StripePaymentIntentID)
}

// GetPrices lists the externally editable price table.
func (s *BookingService) GetPrices() ([]entities.PriceResponse, error) {
	prices, err := s.quoter.prices.GetPrices()
	if err != nil {
		return nil, err
	}
	out := make([]entities.PriceResponse, 0, len(prices))
	for _, p := range prices {
		out = append(out, entities.PriceResponse{
			Package:      p.Package,
			DurationTier: p.DurationTier,
			PricePence:   p.PricePence,
		})
	}
	return out, nil
}

// buildBooking validates the request, resolves both flights against the
// schedule feed, derives the drop-off and pickup windows and snapshots
// everything into an unsaved booking row.
func (s *BookingService) buildBooking(req *entities.BookingRequest) (*db.Booking, *db.FlightSchedule, timeslot.SlotKey, error) {
	var none timeslot.SlotKey

	if req.CustomerName == "" || req.CustomerEmail == "" {
		return nil, nil, none, &apperrors.ValidationError{Field: "customer", Message: "name and email are required"}
	}

	flightDate, err := timeslot.ParseDate(req.FlightDate)
	if err != nil {
		return nil, nil, none, err
	}
	slotType, err := timeslot.ParseSlotType(req.SlotType)
	if err != nil {
		return nil, nil, none, err
	}
	flight, err := s.lookupFlight(flightDate, req.AirlineCode, req.FlightNumber, "flight")
	if err != nil {
		return nil, nil, none, err
	}

	dropoff, err := timeslot.DeriveDropoff(flightDate, flight.ScheduledTime, slotType)
	if err != nil {
		return nil, nil, none, err
	}
	key := timeslot.NewSlotKey(dropoff, req.AirlineCode, req.FlightNumber, slotType)

	returnDate, err := timeslot.ParseDate(req.ReturnFlightDate)
	if err != nil {
		return nil, nil, none, err
	}
	returnAirline := req.ReturnAirlineCode
	if returnAirline == "" {
		returnAirline = req.AirlineCode
	}
	arrival, err := s.lookupFlight(returnDate, returnAirline, req.ReturnFlightNumber, "return_flight")
	if err != nil {
		return nil, nil, none, err
	}
	pickup, err := timeslot.DerivePickup(returnDate, arrival.ScheduledTime)
	if err != nil {
		return nil, nil, none, err
	}

	now := s.now().UTC()
	scheduleID := flight.ID
	booking := &db.Booking{
		Code:               newBookingCode(now),
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		VehicleMake:        req.VehicleMake,
		VehicleModel:       req.VehicleModel,
		VehicleReg:         req.VehicleReg,
		AirlineCode:        req.AirlineCode,
		FlightNumber:       req.FlightNumber,
		FlightScheduleID:   &scheduleID,
		SlotType:           string(slotType),
		SlotKey:            key.String(),
		DropoffDate:        timeslot.CivilDate(dropoff),
		DropoffTime:        timeslot.Clock(dropoff),
		ReturnFlightNumber: returnAirline + req.ReturnFlightNumber,
		PickupDate:         timeslot.CivilDate(pickup),
		PickupTime:         timeslot.Clock(pickup),
		Package:            req.Package,
		Status:             db.StatusPending,
		PaymentStatus:      db.PaymentPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return booking, flight, key, nil
}

func (s *BookingService) lookupFlight(date time.Time, airlineCode, flightNumber, field string) (*db.FlightSchedule, error) {
	flight, err := s.flights.GetFlight(date, airlineCode, flightNumber)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, &apperrors.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("no scheduled flight %s%s on %s", airlineCode, flightNumber, timeslot.DateString(date)),
		}
	}
	return flight, nil
}

func (s *BookingService) arrivalTimeFor(req *entities.BookingRequest) (string, error) {
	returnDate, err := timeslot.ParseDate(req.ReturnFlightDate)
	if err != nil {
		return "", err
	}
	returnAirline := req.ReturnAirlineCode
	if returnAirline == "" {
		returnAirline = req.AirlineCode
	}
	arrival, err := s.lookupFlight(returnDate, returnAirline, req.ReturnFlightNumber, "return_flight")
	if err != nil {
		return "", err
	}
	return arrival.ScheduledTime, nil
}

func (s *BookingService) notify(booking *db.Booking, status string) {
	if s.sender == nil {
		return
	}
	s.sender.SendBookingEmail(booking, status)
	s.sender.SendBookingSMS(booking, status)
}

func bookingResponse(b *db.Booking) *entities.BookingResponse {
	return &entities.BookingResponse{
		Code:               b.Code,
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		CustomerPhone:      b.CustomerPhone,
		VehicleMake:        b.VehicleMake,
		VehicleModel:       b.VehicleModel,
		VehicleReg:         b.VehicleReg,
		AirlineCode:        b.AirlineCode,
		FlightNumber:       b.FlightNumber,
		SlotType:           b.SlotType,
		DropoffDate:        timeslot.DateString(b.DropoffDate),
		DropoffTime:        b.DropoffTime,
		ReturnFlightNumber: b.ReturnFlightNumber,
		PickupDate:         timeslot.DateString(b.PickupDate),
		PickupTime:         b.PickupTime,
		Package:            b.Package,
		PricePence:         b.PricePence,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
