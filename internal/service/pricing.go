package service

import (
	"errors"
	"fmt"
	"time"

	apperrors "skypark/internal/errors"
	"skypark/internal/repository"
	"skypark/internal/timeslot"
)

// Duration tiers for advance-booking pricing. Boundaries use a uniform "<":
// fewer than 7 whole days out is late, fewer than 14 is standard, 14 or more
// earns the advance rate.
const (
	TierLate     = "late"
	TierStandard = "standard"
	TierAdvance  = "advance"
)

// PriceQuoter resolves a booking price from the externally editable price
// table. An explicit override always wins.
type PriceQuoter struct {
	prices repository.PriceStore
	now    func() time.Time
}

func NewPriceQuoter(prices repository.PriceStore) *PriceQuoter {
	return &PriceQuoter{prices: prices, now: time.Now}
}

// DurationTier classifies how far out the drop-off date is, counted in whole
// civil days from today.
func DurationTier(now, dropoffDate time.Time) string {
	days := int(timeslot.CivilDate(dropoffDate).Sub(timeslot.CivilDate(now)).Hours() / 24)
	switch {
	case days < 7:
		return TierLate
	case days < 14:
		return TierStandard
	default:
		return TierAdvance
	}
}

// Quote prices a package for the given drop-off date.
func (q *PriceQuoter) Quote(pkg string, dropoffDate time.Time, overridePence *int) (int, error) {
	if overridePence != nil {
		return *overridePence, nil
	}
	tier := DurationTier(q.now(), dropoffDate)
	price, err := q.prices.GetPackagePrice(pkg, tier)
	if err != nil {
		if errors.Is(err, repository.ErrNoPrice) {
			return 0, &apperrors.ValidationError{Field: "package", Message: fmt.Sprintf("no price configured for package %q", pkg)}
		}
		return 0, err
	}
	return price, nil
}
