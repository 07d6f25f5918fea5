package service

import (
	"time"

	"skypark/internal/entities"
	apperrors "skypark/internal/errors"
	"skypark/internal/repository"
	"skypark/internal/timeslot"
)

// ContactMessage is returned when every drop-off slot on a flight is taken.
const ContactMessage = "All drop-off slots for this flight are fully booked. Please call us on 0333 700 0124 and we will do our best to fit you in."

// UnitState is the allocator's view of one (flight, slot type) unit.
type UnitState string

const (
	UnitAvailable UnitState = "available"
	UnitFull      UnitState = "full"
	UnitDisabled  UnitState = "disabled"
)

// SlotAllocator owns availability decisions for bookable units. Callers that
// mutate must hold the orchestrator's allocation lock; the allocator itself
// only guarantees counter consistency against the store it was given.
type SlotAllocator struct {
	store repository.Store
}

func NewSlotAllocator(store repository.Store) *SlotAllocator {
	return &SlotAllocator{store: store}
}

// UnitState classifies a unit against its flight's capacity tier.
func (a *SlotAllocator) UnitState(key timeslot.SlotKey, capacityTier int) (UnitState, error) {
	if capacityTier <= 0 {
		return UnitDisabled, nil
	}
	booked, err := a.store.SlotBooked(key.String())
	if err != nil {
		return "", err
	}
	if booked >= capacityTier {
		return UnitFull, nil
	}
	return UnitAvailable, nil
}

// IsAvailable is a direct lookup for a single unit.
func (a *SlotAllocator) IsAvailable(key timeslot.SlotKey, capacityTier int) (bool, error) {
	state, err := a.UnitState(key, capacityTier)
	if err != nil {
		return false, err
	}
	return state == UnitAvailable, nil
}

// Book increments the unit's booked counter, failing when the unit is full
// or the flight is phone-only.
func (a *SlotAllocator) Book(key timeslot.SlotKey, capacityTier int) error {
	state, err := a.UnitState(key, capacityTier)
	if err != nil {
		return err
	}
	switch state {
	case UnitDisabled:
		return &apperrors.SlotDisabledError{Flight: key.Flight}
	case UnitFull:
		return &apperrors.SlotFullError{SlotKey: key.String()}
	}
	return a.store.AdjustSlotBooked(key.String(), 1)
}

// BookSynthetic reserves a staff-created unit identified by its serialized
// key. Synthetic keys embed the booking code, so they are always fresh and
// never contend with customer slots.
func (a *SlotAllocator) BookSynthetic(slotKey string) error {
	return a.store.AdjustSlotBooked(slotKey, 1)
}

// Release decrements the booked counter for a serialized slot key. A release
// against a zero counter is a caller bug, surfaced as InvalidReleaseError.
func (a *SlotAllocator) Release(slotKey string) error {
	booked, err := a.store.SlotBooked(slotKey)
	if err != nil {
		return err
	}
	if booked <= 0 {
		return &apperrors.InvalidReleaseError{SlotKey: slotKey}
	}
	return a.store.AdjustSlotBooked(slotKey, -1)
}

// ListAvailableSlots computes both drop-off windows for a flight and returns
// only the units currently bookable. Booked slots disappear rather than
// showing as unavailable; when the computed set was non-empty but nothing
// survives filtering, the response carries the all-booked flag and the
// contact message.
func (a *SlotAllocator) ListAvailableSlots(flightDate time.Time, flightTime, airlineCode, flightNumber string, capacityTier int) (*entities.AvailableSlotsResponse, error) {
	resp := &entities.AvailableSlotsResponse{Slots: []entities.AvailableSlot{}}

	computed := 0
	for _, slotType := range []timeslot.SlotType{timeslot.SlotEarly, timeslot.SlotLate} {
		dropoff, err := timeslot.DeriveDropoff(flightDate, flightTime, slotType)
		if err != nil {
			return nil, err
		}
		computed++

		key := timeslot.NewSlotKey(dropoff, airlineCode, flightNumber, slotType)
		state, err := a.UnitState(key, capacityTier)
		if err != nil {
			return nil, err
		}
		if state != UnitAvailable {
			continue
		}

		resp.Slots = append(resp.Slots, entities.AvailableSlot{
			SlotID:      key.String(),
			SlotType:    string(slotType),
			Label:       slotType.Label(),
			DropoffDate: timeslot.DateString(dropoff),
			DropoffTime: timeslot.Clock(dropoff),
			Overnight:   timeslot.IsOvernightDropoff(flightDate, dropoff),
		})
	}

	if len(resp.Slots) == 0 && computed > 0 {
		resp.AllSlotsBooked = true
		resp.ContactMessage = ContactMessage
	}
	return resp, nil
}
