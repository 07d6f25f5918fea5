package repository

import (
	"time"

	"skypark/internal/db"
)

// FlightStore is the read-only flight schedule provider.
type FlightStore interface {
	// GetFlight returns the schedule row for (date, airline, number), or
	// (nil, nil) when no such flight is scheduled.
	GetFlight(date time.Time, airlineCode, flightNumber string) (*db.FlightSchedule, error)
	ListFlights(date time.Time, direction string) ([]db.FlightSchedule, error)
}

// Store is the persistence surface the booking engine mutates: booking rows
// plus the slot and daily occupancy counters. Transact runs fn against a
// store bound to a single transaction; any error rolls the whole unit back.
type Store interface {
	Transact(fn func(Store) error) error

	CreateBooking(b *db.Booking) error
	GetBookingByCode(code string) (*db.Booking, error)
	GetBookingByStripeSessionID(sessionID string) (*db.Booking, error)
	UpdateBookingStatus(id int, status string) error
	UpdateBookingSession(id int, sessionID string) error
	UpdateBookingPayment(id int, status, paymentStatus, paymentIntentID string) error

	SlotBooked(slotKey string) (int, error)
	AdjustSlotBooked(slotKey string, delta int) error
	DailyOccupancy(start, end time.Time) (map[string]int, error)
	AdjustDailyOccupancy(start, end time.Time, delta int) error
}

// PriceStore is the externally editable pricing configuration.
type PriceStore interface {
	GetPackagePrice(pkg, durationTier string) (int, error)
	GetPrices() ([]db.PackagePrice, error)
}
