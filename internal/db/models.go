package db

import "time"

// Booking lifecycle statuses. Online bookings start pending and are
// confirmed by the payment webhook; staff bookings start confirmed.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

// Payment statuses mirrored from the payment provider.
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentRefunded  = "refunded"
)

// FlightSchedule is immutable reference data loaded from the airport feed.
// ScheduledTime is the civil "HH:MM" string; CapacityTier is how many
// vehicles may be dropped off per slot type on this flight (0 = phone only).
type FlightSchedule struct {
	ID            int
	FlightDate    time.Time
	ScheduledTime string
	FlightNumber  string
	AirlineCode   string
	AirlineName   string
	Direction     string // "departure" or "arrival"
	Origin        string
	Destination   string
	CapacityTier  int
}

// Booking is the durable record. Customer and vehicle fields are snapshots
// captured at creation time; SlotKey and the drop-off/pickup window are the
// authoritative record of what the booking reserved, and cancellation
// reverses exactly those.
type Booking struct {
	ID                    int
	Code                  string
	CustomerName          string
	CustomerEmail         string
	CustomerPhone         string
	VehicleMake           string
	VehicleModel          string
	VehicleReg            string
	AirlineCode           string
	FlightNumber          string
	FlightScheduleID      *int
	SlotType              string
	SlotKey               string
	DropoffDate           time.Time
	DropoffTime           string
	ReturnFlightNumber    string
	PickupDate            time.Time
	PickupTime            string
	Package               string
	PricePence            int
	Status                string
	PaymentStatus         string
	StripeSessionID       string
	StripePaymentIntentID string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type SlotOccupancy struct {
	SlotKey string
	Booked  int
}

type DailyOccupancy struct {
	Day      time.Time
	Vehicles int
}

type PackagePrice struct {
	Package      string
	DurationTier string
	PricePence   int
}
