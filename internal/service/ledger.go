package service

import (
	"time"

	"skypark/internal/entities"
	apperrors "skypark/internal/errors"
	"skypark/internal/repository"
	"skypark/internal/timeslot"
)

// MaxParkingSpots is the physical size of the lot. Every day of every active
// stay range counts against it, regardless of booking channel.
const MaxParkingSpots = 60

// CapacityLedger enforces the lot-wide ceiling across overlapping stay
// ranges. CheckRange is advisory; ApplyDelta adjusts counters without bounds
// checking, so check-then-apply pairs must run under the orchestrator's
// allocation lock.
type CapacityLedger struct {
	store    repository.Store
	maxSpots int
}

func NewCapacityLedger(store repository.Store) *CapacityLedger {
	return &CapacityLedger{store: store, maxSpots: MaxParkingSpots}
}

// CheckRange reports per-day occupancy over [start, end] inclusive, so a
// caller can see exactly which day is constrained.
func (l *CapacityLedger) CheckRange(start, end time.Time) (*entities.CapacityReport, error) {
	start, end = timeslot.CivilDate(start), timeslot.CivilDate(end)
	if end.Before(start) {
		return nil, &apperrors.InvalidRangeError{Start: timeslot.DateString(start), End: timeslot.DateString(end)}
	}

	occupancy, err := l.store.DailyOccupancy(start, end)
	if err != nil {
		return nil, err
	}

	report := &entities.CapacityReport{AllAvailable: true}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		occupied := occupancy[timeslot.DateString(day)]
		available := l.maxSpots - occupied
		if available < 0 {
			available = 0
		}
		report.Days = append(report.Days, entities.DayCapacity{
			Date:      timeslot.DateString(day),
			Occupied:  occupied,
			Available: available,
		})
		if occupied >= l.maxSpots {
			report.AllAvailable = false
		}
	}
	return report, nil
}

// FullDays extracts the constrained days of a report.
func FullDays(report *entities.CapacityReport) []string {
	var days []string
	for _, d := range report.Days {
		if d.Available == 0 {
			days = append(days, d.Date)
		}
	}
	return days
}

// ApplyDelta adjusts every day in [start, end] by delta. Called only after a
// passed check (creation) or as the mirror of a prior apply (cancellation).
func (l *CapacityLedger) ApplyDelta(start, end time.Time, delta int) error {
	start, end = timeslot.CivilDate(start), timeslot.CivilDate(end)
	if end.Before(start) {
		return &apperrors.InvalidRangeError{Start: timeslot.DateString(start), End: timeslot.DateString(end)}
	}
	return l.store.AdjustDailyOccupancy(start, end, delta)
}
