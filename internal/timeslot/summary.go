package timeslot

import "time"

// Summary is a display-oriented projection of a derived window. It carries
// no invariants of its own beyond reusing the same date arithmetic.
type Summary struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	DayName   string `json:"day_name"`
	Overnight bool   `json:"overnight"`
	Warning   string `json:"warning,omitempty"`
}

const (
	dropoffWarning = "Your drop-off falls on the evening before your departure date."
	pickupWarning  = "Your vehicle will be ready for pickup after midnight, on the day following your arrival date."
)

func summarize(derived time.Time, overnight bool, warning string) *Summary {
	s := &Summary{
		Date:      DateString(derived),
		Time:      Clock(derived),
		DayName:   derived.Weekday().String(),
		Overnight: overnight,
	}
	if overnight {
		s.Warning = warning
	}
	return s
}

// SummarizeDropoff builds the customer-facing description of a drop-off
// window, flagging overnight rollovers.
func SummarizeDropoff(flightDate time.Time, flightTime string, slotType SlotType) (*Summary, error) {
	dropoff, err := DeriveDropoff(flightDate, flightTime, slotType)
	if err != nil {
		return nil, err
	}
	return summarize(dropoff, IsOvernightDropoff(flightDate, dropoff), dropoffWarning), nil
}

// SummarizePickup builds the customer-facing description of a pickup window.
func SummarizePickup(arrivalDate time.Time, arrivalTime string) (*Summary, error) {
	pickup, err := DerivePickup(arrivalDate, arrivalTime)
	if err != nil {
		return nil, err
	}
	return summarize(pickup, IsOvernightPickup(arrivalDate, pickup), pickupWarning), nil
}
