package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skypark/internal/db"
	"skypark/internal/entities"
	apperrors "skypark/internal/errors"
)

func bookingRequest() *entities.BookingRequest {
	return &entities.BookingRequest{
		CustomerName:       "Jane Smith",
		CustomerEmail:      "jane@example.com",
		CustomerPhone:      "+447700900123",
		VehicleMake:        "Ford",
		VehicleModel:       "Focus",
		VehicleReg:         "AB12 CDE",
		FlightDate:         "2026-02-10",
		AirlineCode:        "BA",
		FlightNumber:       "1326",
		SlotType:           "early",
		ReturnFlightDate:   "2026-02-17",
		ReturnFlightNumber: "1327",
		Package:            "standard",
		PaymentMethod:      "online",
	}
}

func testFlights(tier int) *fakeFlights {
	return newFakeFlights(
		departure("2026-02-10", "07:10", tier),
		arrival("2026-02-17", "23:55"),
	)
}

func TestCreateBookingSuccess(t *testing.T) {
	store := newFakeStore()
	payments := &fakePayments{}
	svc := newTestService(testFlights(2), store, payments)

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Code)
	assert.Equal(t, "cs_test_1", resp.SessionID)
	assert.Equal(t, "https://checkout.test/cs_test_1", resp.URL)

	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, db.StatusPending, booking.Status)
	assert.Equal(t, db.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, 8500, booking.PricePence)
	assert.Equal(t, "2026-02-10|04:25|BA1326|early", booking.SlotKey)
	assert.Equal(t, "2026-02-10", booking.DropoffDate.Format("2006-01-02"))
	assert.Equal(t, "04:25", booking.DropoffTime)
	assert.Equal(t, "2026-02-18", booking.PickupDate.Format("2006-01-02"))
	assert.Equal(t, "00:30", booking.PickupTime)
	assert.Equal(t, "BA1327", booking.ReturnFlightNumber)

	booked, err := store.SlotBooked(booking.SlotKey)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)

	// Every day of the stay counts against the lot, drop-off through pickup.
	occupancy, err := store.DailyOccupancy(booking.DropoffDate, booking.PickupDate)
	require.NoError(t, err)
	assert.Len(t, occupancy, 9)
	for day, n := range occupancy {
		assert.Equal(t, 1, n, "day %s", day)
	}
}

func TestCreateBookingDepositOnArrival(t *testing.T) {
	payments := &fakePayments{}
	svc := newTestService(testFlights(2), newFakeStore(), payments)

	req := bookingRequest()
	req.PaymentMethod = "on_arrival"
	_, err := svc.CreateBooking(req)
	require.NoError(t, err)

	require.Len(t, payments.amounts, 1)
	assert.Equal(t, int64(2550), payments.amounts[0]) // 30% of 8500
}

func TestCreateBookingSlotUnavailable(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(1), store, &fakePayments{})

	first, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	req := bookingRequest()
	req.CustomerEmail = "other@example.com"
	_, err = svc.CreateBooking(req)
	var unavailable *apperrors.SlotUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// The failed attempt must leave no trace.
	assert.Equal(t, 1, store.created)
	booking, err := store.GetBookingByCode(first.Code)
	require.NoError(t, err)
	booked, err := store.SlotBooked(booking.SlotKey)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
	occupancy, err := store.DailyOccupancy(booking.DropoffDate, booking.PickupDate)
	require.NoError(t, err)
	for day, n := range occupancy {
		assert.Equal(t, 1, n, "day %s", day)
	}
}

func TestCreateBookingDisabledFlight(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(0), store, &fakePayments{})

	_, err := svc.CreateBooking(bookingRequest())
	var disabled *apperrors.SlotDisabledError
	require.ErrorAs(t, err, &disabled)
	assert.Equal(t, 0, store.created)
}

func TestCreateBookingUnknownFlight(t *testing.T) {
	flights := newFakeFlights(arrival("2026-02-17", "23:55"))
	svc := newTestService(flights, newFakeStore(), &fakePayments{})

	_, err := svc.CreateBooking(bookingRequest())
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "flight", verr.Field)
}

func TestCreateBookingMissingCustomer(t *testing.T) {
	payments := &fakePayments{}
	svc := newTestService(testFlights(2), newFakeStore(), payments)

	req := bookingRequest()
	req.CustomerEmail = ""
	_, err := svc.CreateBooking(req)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, payments.sessions)
}

func TestCreateBookingCapacityExceeded(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(2), store, &fakePayments{})

	// One full day inside the stay range blocks the whole booking.
	full := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AdjustDailyOccupancy(full, full, MaxParkingSpots))

	_, err := svc.CreateBooking(bookingRequest())
	var exceeded *apperrors.CapacityExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, []string{"2026-02-12"}, exceeded.FullDays)
	assert.Equal(t, 0, store.created)
	assert.Empty(t, store.slots)
}

func TestFailedCreateLeavesNoCheckoutSession(t *testing.T) {
	store := newFakeStore()
	payments := &fakePayments{}
	svc := newTestService(testFlights(1), store, payments)

	_, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	req := bookingRequest()
	req.CustomerEmail = "other@example.com"
	_, err = svc.CreateBooking(req)
	var unavailable *apperrors.SlotUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// The session is opened only after the reservation commits, so the
	// failed attempt left nothing payable behind.
	assert.Equal(t, 1, payments.sessions)
}

func TestCheckoutFailureReleasesReservation(t *testing.T) {
	store := newFakeStore()
	payments := &fakePayments{createErr: errors.New("gateway unavailable")}
	svc := newTestService(testFlights(1), store, payments)

	_, err := svc.CreateBooking(bookingRequest())
	require.Error(t, err)

	slots, err := svc.ListAvailableSlots("2026-02-10", "", "BA", "1326")
	require.NoError(t, err)
	assert.Len(t, slots.Slots, 2)

	// The slot and ledger days came back, so the next attempt succeeds.
	payments.createErr = nil
	_, err = svc.CreateBooking(bookingRequest())
	require.NoError(t, err)
}

func TestCreateRollsBackWhenPersistFails(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("insert failed")
	svc := newTestService(testFlights(2), store, &fakePayments{})

	_, err := svc.CreateBooking(bookingRequest())
	require.Error(t, err)
	assert.Equal(t, 0, store.created)
	assert.Empty(t, store.slots)
	occupancy, err := store.DailyOccupancy(
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Empty(t, occupancy)

	store.createErr = nil
	_, err = svc.CreateBooking(bookingRequest())
	require.NoError(t, err)
}

func TestConcurrentCreatesExactlyOne(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(1), store, &fakePayments{})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := bookingRequest()
			_, errs[i] = svc.CreateBooking(req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var unavailable *apperrors.SlotUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.created)
	assert.Equal(t, 1, store.slots["2026-02-10|04:25|BA1326|early"])
}

func TestCancelBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(1), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(resp.Code)
	require.NoError(t, err)
	assert.True(t, cancelled)

	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, booking.Status)
	booked, err := store.SlotBooked(booking.SlotKey)
	require.NoError(t, err)
	assert.Equal(t, 0, booked)
	occupancy, err := store.DailyOccupancy(booking.DropoffDate, booking.PickupDate)
	require.NoError(t, err)
	for day, n := range occupancy {
		assert.Equal(t, 0, n, "day %s", day)
	}

	// Cancelling twice or cancelling an unknown code is a no-op, not an error.
	cancelled, err = svc.CancelBooking(resp.Code)
	require.NoError(t, err)
	assert.False(t, cancelled)

	cancelled, err = svc.CancelBooking("NOPE1234")
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestCancelRestoresSlotVisibility(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(1), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	slots, err := svc.ListAvailableSlots("2026-02-10", "", "BA", "1326")
	require.NoError(t, err)
	require.Len(t, slots.Slots, 1)
	assert.Equal(t, "late", slots.Slots[0].SlotType)

	_, err = svc.CancelBooking(resp.Code)
	require.NoError(t, err)

	slots, err = svc.ListAvailableSlots("2026-02-10", "", "BA", "1326")
	require.NoError(t, err)
	assert.Len(t, slots.Slots, 2)
}

func TestCancelRefundsPaidBooking(t *testing.T) {
	store := newFakeStore()
	payments := &fakePayments{}
	svc := newTestService(testFlights(1), store, payments)

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	// Before payment lands, cancelling must not attempt a refund.
	cancelled, err := svc.CancelBooking(resp.Code)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Empty(t, payments.refunded)

	resp, err = svc.CreateBooking(bookingRequest())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmBookingBySessionID(resp.SessionID, "pi_123"))

	cancelled, err = svc.CancelBooking(resp.Code)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, []string{resp.SessionID}, payments.refunded)
}

func TestBookingSnapshotImmutable(t *testing.T) {
	store := newFakeStore()
	flights := testFlights(2)
	svc := newTestService(flights, store, &fakePayments{})

	req := bookingRequest()
	resp, err := svc.CreateBooking(req)
	require.NoError(t, err)

	// Mutating the request or the schedule after the fact must not touch
	// the stored booking.
	req.CustomerName = "Someone Else"
	req.VehicleReg = "ZZ99 ZZZ"
	for _, fl := range flights.flights {
		fl.ScheduledTime = "09:40"
	}

	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", booking.CustomerName)
	assert.Equal(t, "AB12 CDE", booking.VehicleReg)
	assert.Equal(t, "04:25", booking.DropoffTime)
	assert.Equal(t, "2026-02-10|04:25|BA1326|early", booking.SlotKey)
}

func TestAdminBookingBypassesSlots(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(0), store, &fakePayments{})

	// Customer flow is blocked on a phone-only flight; staff flow is not.
	_, err := svc.CreateBooking(bookingRequest())
	var disabled *apperrors.SlotDisabledError
	require.ErrorAs(t, err, &disabled)

	first, err := svc.CreateAdminBooking(bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, first.Status)

	second, err := svc.CreateAdminBooking(bookingRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)

	booking, err := store.GetBookingByCode(first.Code)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(booking.SlotKey, "admin|BA1326|"))
}

func TestAdminBookingOverridePrice(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(2), store, &fakePayments{})

	override := 4200
	req := bookingRequest()
	req.OverridePricePence = &override
	resp, err := svc.CreateAdminBooking(req)
	require.NoError(t, err)
	assert.Equal(t, 4200, resp.PricePence)
}

func TestAdminBookingCapacityBounded(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(0), store, &fakePayments{})

	full := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AdjustDailyOccupancy(full, full, MaxParkingSpots))

	_, err := svc.CreateAdminBooking(bookingRequest())
	var exceeded *apperrors.CapacityExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Contains(t, exceeded.FullDays, "2026-02-15")
}

func TestGetBookingVerifiesEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(2), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	found, err := svc.GetBooking(resp.Code, "JANE@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, resp.Code, found.Code)

	found, err = svc.GetBooking(resp.Code, "someone@else.com")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestConfirmBookingBySessionID(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(2), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmBookingBySessionID(resp.SessionID, "pi_123"))

	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, booking.Status)
	assert.Equal(t, db.PaymentSucceeded, booking.PaymentStatus)
	assert.Equal(t, "pi_123", booking.StripePaymentIntentID)

	// A replayed webhook is ignored once the booking has left pending.
	require.NoError(t, svc.ConfirmBookingBySessionID(resp.SessionID, "pi_replay"))
	booking, err = store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", booking.StripePaymentIntentID)

	assert.Error(t, svc.ConfirmBookingBySessionID("cs_unknown", "pi_999"))
}

func TestLateWebhookDoesNotResurrectCancelledBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(1), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)
	cancelled, err := svc.CancelBooking(resp.Code)
	require.NoError(t, err)
	require.True(t, cancelled)

	// The payment webhook can land after the customer already cancelled;
	// the slot and ledger days are released, so the booking must stay
	// cancelled.
	require.NoError(t, svc.ConfirmBookingBySessionID(resp.SessionID, "pi_late"))

	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, booking.Status)
	assert.Equal(t, db.PaymentPending, booking.PaymentStatus)

	booked, err := store.SlotBooked(booking.SlotKey)
	require.NoError(t, err)
	assert.Equal(t, 0, booked)
	occupancy, err := store.DailyOccupancy(booking.DropoffDate, booking.PickupDate)
	require.NoError(t, err)
	for day, n := range occupancy {
		assert.Equal(t, 0, n, "day %s", day)
	}

	// The slot is genuinely free for the next customer.
	slots, err := svc.ListAvailableSlots("2026-02-10", "", "BA", "1326")
	require.NoError(t, err)
	assert.Len(t, slots.Slots, 2)
}

func TestRefundWebhookIgnoresUnpaidBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(2), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)

	require.NoError(t, svc.MarkRefundedBySessionID(resp.SessionID))
	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, booking.Status)
	assert.Equal(t, db.PaymentPending, booking.PaymentStatus)
}

func TestMarkRefundedBySessionID(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(testFlights(2), store, &fakePayments{})

	resp, err := svc.CreateBooking(bookingRequest())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmBookingBySessionID(resp.SessionID, "pi_123"))

	require.NoError(t, svc.MarkRefundedBySessionID(resp.SessionID))
	booking, err := store.GetBookingByCode(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusRefunded, booking.Status)
	assert.Equal(t, db.PaymentRefunded, booking.PaymentStatus)

	// Refund webhooks never touch slot or lot counters.
	booked, err := store.SlotBooked(booking.SlotKey)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
}

func TestQuote(t *testing.T) {
	svc := newTestService(testFlights(2), newFakeStore(), &fakePayments{})

	quote, err := svc.Quote(bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, "2026-02-10", quote.Dropoff.Date)
	assert.Equal(t, "04:25", quote.Dropoff.Time)
	assert.False(t, quote.Dropoff.Overnight)
	assert.Equal(t, "2026-02-18", quote.Pickup.Date)
	assert.Equal(t, "00:30", quote.Pickup.Time)
	assert.True(t, quote.Pickup.Overnight)
	assert.Equal(t, TierStandard, quote.DurationTier)
	assert.Equal(t, 8500, quote.PricePence)
}

func TestListFlightsValidation(t *testing.T) {
	svc := newTestService(testFlights(2), newFakeStore(), &fakePayments{})

	flights, err := svc.ListFlights("2026-02-10", "departure")
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "1326", flights[0].FlightNumber)

	_, err = svc.ListFlights("2026-02-10", "sideways")
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestListAvailableSlotsDefaultsToScheduledTime(t *testing.T) {
	svc := newTestService(testFlights(2), newFakeStore(), &fakePayments{})

	slots, err := svc.ListAvailableSlots("2026-02-10", "", "BA", "1326")
	require.NoError(t, err)
	require.Len(t, slots.Slots, 2)
	assert.Equal(t, "04:25", slots.Slots[0].DropoffTime)
	assert.Equal(t, "05:10", slots.Slots[1].DropoffTime)
}
