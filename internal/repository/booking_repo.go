package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skypark/internal/db"
)

// queryer is satisfied by both *sql.DB and *sql.Tx, so the same repository
// methods serve plain and transactional callers.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type BookingRepository struct {
	db *sql.DB // nil when bound to a transaction
	q  queryer
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{db: database, q: database}
}

// Transact runs fn against a transaction-bound copy of the repository.
// Nested calls reuse the enclosing transaction.
func (r *BookingRepository) Transact(fn func(Store) error) error {
	if r.db == nil {
		return fn(r)
	}
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	if err := fn(&BookingRepository{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed (%v) after: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

func (r *BookingRepository) CreateBooking(b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(code, customer_name, customer_email, customer_phone, vehicle_make, vehicle_model, vehicle_reg,
		 airline_code, flight_number, flight_schedule_id, slot_type, slot_key, dropoff_date, dropoff_time,
		 return_flight_number, pickup_date, pickup_time, package, price_pence, status, payment_status,
		 stripe_session_id, stripe_payment_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at`
	return r.q.QueryRow(query,
		b.Code,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		b.VehicleMake,
		b.VehicleModel,
		b.VehicleReg,
		b.AirlineCode,
		b.FlightNumber,
		b.FlightScheduleID,
		b.SlotType,
		b.SlotKey,
		b.DropoffDate,
		b.DropoffTime,
		b.ReturnFlightNumber,
		b.PickupDate,
		b.PickupTime,
		b.Package,
		b.PricePence,
		b.Status,
		b.PaymentStatus,
		b.StripeSessionID,
		b.StripePaymentIntentID,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

const bookingColumns = `
	id, code, customer_name, customer_email, customer_phone, vehicle_make, vehicle_model, vehicle_reg,
	airline_code, flight_number, flight_schedule_id, slot_type, slot_key, dropoff_date, dropoff_time,
	return_flight_number, pickup_date, pickup_time, package, price_pence, status, payment_status,
	stripe_session_id, stripe_payment_intent_id, created_at, updated_at`

func scanBooking(row *sql.Row) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.VehicleMake, &b.VehicleModel, &b.VehicleReg,
		&b.AirlineCode, &b.FlightNumber, &b.FlightScheduleID, &b.SlotType, &b.SlotKey, &b.DropoffDate, &b.DropoffTime,
		&b.ReturnFlightNumber, &b.PickupDate, &b.PickupTime, &b.Package, &b.PricePence, &b.Status, &b.PaymentStatus,
		&b.StripeSessionID, &b.StripePaymentIntentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) GetBookingByCode(code string) (*db.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE code = $1`
	return scanBooking(r.q.QueryRow(query, code))
}

func (r *BookingRepository) GetBookingByStripeSessionID(sessionID string) (*db.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE stripe_session_id = $1`
	return scanBooking(r.q.QueryRow(query, sessionID))
}

func (r *BookingRepository) UpdateBookingStatus(id int, status string) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.q.Exec(query, id, status); err != nil {
		return fmt.Errorf("error updating booking %d status: %w", id, err)
	}
	return nil
}

func (r *BookingRepository) UpdateBookingSession(id int, sessionID string) error {
	query := `UPDATE bookings SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.q.Exec(query, id, sessionID); err != nil {
		return fmt.Errorf("error updating booking %d session: %w", id, err)
	}
	return nil
}

func (r *BookingRepository) UpdateBookingPayment(id int, status, paymentStatus, paymentIntentID string) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, stripe_payment_intent_id = $4, updated_at = NOW()
		WHERE id = $1`
	if _, err := r.q.Exec(query, id, status, paymentStatus, paymentIntentID); err != nil {
		return fmt.Errorf("error updating booking %d payment state: %w", id, err)
	}
	return nil
}

func (r *BookingRepository) SlotBooked(slotKey string) (int, error) {
	var booked int
	err := r.q.QueryRow(`SELECT booked FROM slot_occupancy WHERE slot_key = $1`, slotKey).Scan(&booked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("error querying slot occupancy for %s: %w", slotKey, err)
	}
	return booked, nil
}

func (r *BookingRepository) AdjustSlotBooked(slotKey string, delta int) error {
	query := `
		INSERT INTO slot_occupancy (slot_key, booked)
		VALUES ($1, GREATEST($2, 0))
		ON CONFLICT (slot_key)
		DO UPDATE SET booked = slot_occupancy.booked + $2`
	if _, err := r.q.Exec(query, slotKey, delta); err != nil {
		return fmt.Errorf("error adjusting slot occupancy for %s: %w", slotKey, err)
	}
	return nil
}

func (r *BookingRepository) DailyOccupancy(start, end time.Time) (map[string]int, error) {
	query := `SELECT day, vehicles FROM daily_occupancy WHERE day BETWEEN $1 AND $2`
	rows, err := r.q.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("error querying daily occupancy: %w", err)
	}
	defer rows.Close()

	occupancy := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var vehicles int
		if err := rows.Scan(&day, &vehicles); err != nil {
			return nil, fmt.Errorf("error scanning daily occupancy: %w", err)
		}
		occupancy[day.Format("2006-01-02")] = vehicles
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating daily occupancy rows: %w", err)
	}
	return occupancy, nil
}

func (r *BookingRepository) AdjustDailyOccupancy(start, end time.Time, delta int) error {
	query := `
		INSERT INTO daily_occupancy (day, vehicles)
		SELECT gs::date, GREATEST($3, 0)
		FROM generate_series($1::date, $2::date, interval '1 day') AS gs
		ON CONFLICT (day)
		DO UPDATE SET vehicles = daily_occupancy.vehicles + $3`
	if _, err := r.q.Exec(query, start, end, delta); err != nil {
		return fmt.Errorf("error adjusting daily occupancy: %w", err)
	}
	return nil
}
