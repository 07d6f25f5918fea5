package service

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"skypark/internal/db"
	"skypark/internal/repository"
	"skypark/internal/timeslot"
)

// --- in-memory Store ---

type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	byCode    map[string]*db.Booking
	slots     map[string]int
	days      map[string]int
	created   int
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		byCode: map[string]*db.Booking{},
		slots:  map[string]int{},
		days:   map[string]int{},
	}
}

// Transact snapshots all state up front and restores it when fn fails,
// mirroring the rollback of the real transaction-bound store.
func (f *fakeStore) Transact(fn func(repository.Store) error) error {
	f.mu.Lock()
	bookings := make(map[string]*db.Booking, len(f.byCode))
	for code, b := range f.byCode {
		copied := *b
		bookings[code] = &copied
	}
	slots := make(map[string]int, len(f.slots))
	for key, n := range f.slots {
		slots[key] = n
	}
	days := make(map[string]int, len(f.days))
	for key, n := range f.days {
		days[key] = n
	}
	nextID, created := f.nextID, f.created
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.byCode, f.slots, f.days = bookings, slots, days
		f.nextID, f.created = nextID, created
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) CreateBooking(b *db.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = f.nextID
	f.nextID++
	stored := *b
	f.byCode[b.Code] = &stored
	f.created++
	return nil
}

func (f *fakeStore) GetBookingByCode(code string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byCode[code]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeStore) GetBookingByStripeSessionID(sessionID string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byCode {
		if b.StripeSessionID == sessionID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateBookingStatus(id int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byCode {
		if b.ID == id {
			b.Status = status
			b.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("booking %d not found", id)
}

func (f *fakeStore) UpdateBookingSession(id int, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byCode {
		if b.ID == id {
			b.StripeSessionID = sessionID
			return nil
		}
	}
	return fmt.Errorf("booking %d not found", id)
}

func (f *fakeStore) UpdateBookingPayment(id int, status, paymentStatus, paymentIntentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byCode {
		if b.ID == id {
			b.Status = status
			b.PaymentStatus = paymentStatus
			b.StripePaymentIntentID = paymentIntentID
			return nil
		}
	}
	return fmt.Errorf("booking %d not found", id)
}

func (f *fakeStore) SlotBooked(slotKey string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[slotKey], nil
}

func (f *fakeStore) AdjustSlotBooked(slotKey string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slotKey] += delta
	return nil
}

func (f *fakeStore) DailyOccupancy(start, end time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if v, ok := f.days[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func (f *fakeStore) AdjustDailyOccupancy(start, end time.Time, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		f.days[day.Format("2006-01-02")] += delta
	}
	return nil
}

// --- flight schedule provider ---

type fakeFlights struct {
	flights map[string]*db.FlightSchedule
}

func flightKey(date time.Time, airlineCode, flightNumber string) string {
	return date.Format("2006-01-02") + "|" + airlineCode + flightNumber
}

func newFakeFlights(flights ...*db.FlightSchedule) *fakeFlights {
	f := &fakeFlights{flights: map[string]*db.FlightSchedule{}}
	for _, fl := range flights {
		f.flights[flightKey(fl.FlightDate, fl.AirlineCode, fl.FlightNumber)] = fl
	}
	return f
}

func (f *fakeFlights) GetFlight(date time.Time, airlineCode, flightNumber string) (*db.FlightSchedule, error) {
	return f.flights[flightKey(date, airlineCode, flightNumber)], nil
}

func (f *fakeFlights) ListFlights(date time.Time, direction string) ([]db.FlightSchedule, error) {
	var out []db.FlightSchedule
	for _, fl := range f.flights {
		if timeslot.DateString(fl.FlightDate) == timeslot.DateString(date) && fl.Direction == direction {
			out = append(out, *fl)
		}
	}
	return out, nil
}

// --- pricing configuration ---

type fakePrices struct {
	prices map[string]int // "package|tier" → pence
}

func newFakePrices() *fakePrices {
	return &fakePrices{prices: map[string]int{
		"standard|" + TierLate:     9900,
		"standard|" + TierStandard: 8500,
		"standard|" + TierAdvance:  6900,
		"premium|" + TierLate:      14900,
		"premium|" + TierStandard:  12900,
		"premium|" + TierAdvance:   9900,
	}}
}

func (f *fakePrices) GetPackagePrice(pkg, durationTier string) (int, error) {
	price, ok := f.prices[pkg+"|"+durationTier]
	if !ok {
		return 0, fmt.Errorf("%w for package %q, tier %q", repository.ErrNoPrice, pkg, durationTier)
	}
	return price, nil
}

func (f *fakePrices) GetPrices() ([]db.PackagePrice, error) {
	var out []db.PackagePrice
	for key, price := range f.prices {
		parts := strings.SplitN(key, "|", 2)
		out = append(out, db.PackagePrice{Package: parts[0], DurationTier: parts[1], PricePence: price})
	}
	return out, nil
}

// --- payment provider ---

type fakePayments struct {
	mu        sync.Mutex
	sessions  int
	amounts   []int64
	refunded  []string
	createErr error
}

func (f *fakePayments) CreateCheckoutSession(amountPence int64, currency, bookingCode, customerEmail string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.sessions++
	f.amounts = append(f.amounts, amountPence)
	sessionID := fmt.Sprintf("cs_test_%d", f.sessions)
	return "https://checkout.test/" + sessionID, sessionID, nil
}

func (f *fakePayments) RefundBySessionID(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunded = append(f.refunded, sessionID)
	return nil
}

// --- helpers ---

func departure(date string, scheduled string, tier int) *db.FlightSchedule {
	d, _ := time.Parse("2006-01-02", date)
	return &db.FlightSchedule{
		ID:            101,
		FlightDate:    d,
		ScheduledTime: scheduled,
		FlightNumber:  "1326",
		AirlineCode:   "BA",
		AirlineName:   "British Airways",
		Direction:     "departure",
		Destination:   "MAD",
		CapacityTier:  tier,
	}
}

func arrival(date string, scheduled string) *db.FlightSchedule {
	d, _ := time.Parse("2006-01-02", date)
	return &db.FlightSchedule{
		ID:            202,
		FlightDate:    d,
		ScheduledTime: scheduled,
		FlightNumber:  "1327",
		AirlineCode:   "BA",
		AirlineName:   "British Airways",
		Direction:     "arrival",
		Origin:        "MAD",
		CapacityTier:  0,
	}
}

// newTestService pins the clock to 2026-02-01, advancing a millisecond per
// call so generated booking codes stay unique.
func newTestService(flights *fakeFlights, store *fakeStore, payments PaymentProvider) *BookingService {
	svc := NewBookingService(flights, store, newFakePrices(), payments, nil)
	var ticks int64
	svc.now = func() time.Time {
		n := atomic.AddInt64(&ticks, 1)
		return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Millisecond)
	}
	svc.quoter.now = svc.now
	return svc
}
