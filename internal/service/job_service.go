package service

import (
	"fmt"
	"log"
	"time"

	"skypark/internal/db"
	"skypark/internal/repository"
)

// JobService backs the cron sweeps.
type JobService struct {
	Repo     *repository.JobRepository
	Bookings *BookingService
}

func NewJobService(repo *repository.JobRepository, bookings *BookingService) *JobService {
	return &JobService{Repo: repo, Bookings: bookings}
}

// CompleteFinishedBookings marks confirmed bookings whose pickup date has
// passed as completed.
func (s *JobService) CompleteFinishedBookings() error {
	log.Println("Cron Job: checking for bookings to mark as 'completed'...")

	ids, err := s.Repo.GetConfirmedBookingIDsPastPickup()
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed bookings past pickup: %w", err)
	}
	if len(ids) == 0 {
		log.Println("Cron Job: no confirmed bookings found past their pickup date.")
		return nil
	}

	log.Printf("Cron Job: found %d bookings to mark as 'completed'. IDs: %v", len(ids), ids)
	if err := s.Repo.UpdateBookingStatuses(ids, db.StatusCompleted); err != nil {
		return fmt.Errorf("cron job: failed to update booking statuses: %w", err)
	}
	return nil
}

// CancelStalePendingBookings cancels pending bookings whose payment never
// arrived, going through the booking service so the held slot and the ledger
// days are released with them.
func (s *JobService) CancelStalePendingBookings(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	codes, err := s.Repo.GetStalePendingCodes(cutoff)
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending bookings: %w", err)
	}
	if len(codes) == 0 {
		return nil
	}

	log.Printf("Cron Job: cancelling %d stale pending bookings", len(codes))
	for _, code := range codes {
		cancelled, err := s.Bookings.CancelBooking(code)
		if err != nil {
			log.Printf("Cron Job: failed to cancel stale booking %s: %v", code, err)
			continue
		}
		if cancelled {
			log.Printf("Cron Job: cancelled stale pending booking %s", code)
		}
	}
	return nil
}
