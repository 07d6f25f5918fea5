package errors

import (
	"fmt"
	"strings"
)

// ValidationError signals malformed caller input (bad date or time string,
// unknown slot type or package). Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SlotFullError is returned by the allocator when a unit already holds as
// many bookings as its capacity tier allows.
type SlotFullError struct {
	SlotKey string
}

func (e *SlotFullError) Error() string {
	return fmt.Sprintf("slot %s is full", e.SlotKey)
}

// SlotUnavailableError is the orchestrator-level "already booked" failure
// surfaced to customers.
type SlotUnavailableError struct {
	SlotKey string
}

func (e *SlotUnavailableError) Error() string {
	return "this drop-off slot has already been booked, please choose another slot"
}

// SlotDisabledError covers capacity-tier-zero flights, which are bookable by
// phone only.
type SlotDisabledError struct {
	Flight string
}

func (e *SlotDisabledError) Error() string {
	return fmt.Sprintf("online booking is not available for flight %s, please call us to book", e.Flight)
}

// CapacityExceededError reports the specific days on which the car park is
// already at its limit.
type CapacityExceededError struct {
	FullDays []string
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("the car park is full on: %s", strings.Join(e.FullDays, ", "))
}

// InvalidReleaseError indicates a release of a slot whose booked counter is
// already zero. A caller bug or upstream data problem, not a user error.
type InvalidReleaseError struct {
	SlotKey string
}

func (e *InvalidReleaseError) Error() string {
	return fmt.Sprintf("cannot release slot %s: no bookings recorded against it", e.SlotKey)
}

// InvalidRangeError indicates an inverted stay range.
type InvalidRangeError struct {
	Start string
	End   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: end %s is before start %s", e.End, e.Start)
}
