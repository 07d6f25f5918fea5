// Package timeslot holds the pure time arithmetic behind the booking
// engine: converting a flight's scheduled time into a drop-off or pickup
// window and building the composite keys that identify bookable slots.
package timeslot

import (
	"fmt"
	"strings"
	"time"

	apperrors "skypark/internal/errors"
)

// SlotType identifies one of the two drop-off windows offered per departure.
// This is a closed set; there are no dynamic slot types.
type SlotType string

const (
	SlotEarly SlotType = "early"
	SlotLate  SlotType = "late"
)

const (
	// Minutes before scheduled departure a vehicle must be dropped off.
	EarlyOffsetMinutes = 165
	LateOffsetMinutes  = 120

	// Minutes after scheduled arrival before a vehicle is ready for pickup.
	PickupBufferMinutes = 35
)

// OffsetMinutes returns how long before departure this slot type's drop-off
// falls.
func (t SlotType) OffsetMinutes() int {
	if t == SlotEarly {
		return EarlyOffsetMinutes
	}
	return LateOffsetMinutes
}

func (t SlotType) Label() string {
	if t == SlotEarly {
		return "Early drop-off"
	}
	return "Late drop-off"
}

// ParseSlotType maps a request string onto the closed slot-type set.
func ParseSlotType(s string) (SlotType, error) {
	switch SlotType(strings.ToLower(strings.TrimSpace(s))) {
	case SlotEarly:
		return SlotEarly, nil
	case SlotLate:
		return SlotLate, nil
	}
	return "", &apperrors.ValidationError{Field: "slot_type", Message: fmt.Sprintf("unknown slot type %q", s)}
}

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", strings.TrimSpace(s))
	if perr != nil {
		return 0, 0, &apperrors.ValidationError{Field: "time", Message: fmt.Sprintf("%q is not a valid HH:MM time", s)}
	}
	return t.Hour(), t.Minute(), nil
}

// ParseDate parses a "YYYY-MM-DD" civil date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &apperrors.ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", s)}
	}
	return d, nil
}

// CivilDate truncates t to midnight, keeping only the calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Clock formats the time-of-day of t as "HH:MM".
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// DateString formats the civil date of t as "YYYY-MM-DD".
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

func at(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
}

// DeriveDropoff subtracts the slot type's offset from the flight's scheduled
// departure. The rollover is determined strictly by the subtraction, so a
// departure numerically equal to the offset yields 00:00 on the flight date
// itself, while anything earlier lands on the previous civil day. Month and
// year boundaries fall out of time.Time arithmetic.
func DeriveDropoff(flightDate time.Time, flightTime string, slotType SlotType) (time.Time, error) {
	h, m, err := ParseClock(flightTime)
	if err != nil {
		return time.Time{}, err
	}
	departure := at(flightDate, h, m)
	return departure.Add(-time.Duration(slotType.OffsetMinutes()) * time.Minute), nil
}

// DerivePickup adds the clearance buffer to the scheduled arrival. An
// arrival whose buffer lands exactly on midnight yields 00:00 of the next
// civil day.
func DerivePickup(arrivalDate time.Time, arrivalTime string) (time.Time, error) {
	h, m, err := ParseClock(arrivalTime)
	if err != nil {
		return time.Time{}, err
	}
	arrival := at(arrivalDate, h, m)
	return arrival.Add(PickupBufferMinutes * time.Minute), nil
}

// IsOvernightDropoff reports whether the drop-off falls on the evening
// before the flight date. Messaging only; never feeds into slot identity.
func IsOvernightDropoff(flightDate, dropoff time.Time) bool {
	return CivilDate(dropoff).Before(CivilDate(flightDate))
}

// IsOvernightPickup reports whether the pickup rolled past midnight relative
// to the arrival date.
func IsOvernightPickup(arrivalDate, pickup time.Time) bool {
	return CivilDate(pickup).After(CivilDate(arrivalDate))
}

// SlotKey identifies a bookable (flight, slot type) unit. Two slots with the
// same key are the same unit; the at-most-one-booking-per-slot guarantee
// hangs off this identity.
type SlotKey struct {
	DropoffDate time.Time
	DropoffTime string
	Flight      string // airline code + flight number, e.g. "BA1326"
	Type        SlotType
}

// NewSlotKey builds the key for a derived drop-off.
func NewSlotKey(dropoff time.Time, airlineCode, flightNumber string, slotType SlotType) SlotKey {
	return SlotKey{
		DropoffDate: CivilDate(dropoff),
		DropoffTime: Clock(dropoff),
		Flight:      airlineCode + flightNumber,
		Type:        slotType,
	}
}

// String is the single serialized form of a slot key, used only at
// persistence and logging boundaries.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", DateString(k.DropoffDate), k.DropoffTime, k.Flight, k.Type)
}

// AdminSlotKey builds the synthetic key recorded on staff-created bookings.
// It embeds the booking code, so it can never collide with a customer-facing
// slot key or with another admin booking.
func AdminSlotKey(airlineCode, flightNumber, bookingCode string) string {
	return fmt.Sprintf("admin|%s%s|%s", airlineCode, flightNumber, bookingCode)
}
