package repository

import (
	"database/sql"
	"strconv"

	"skypark/internal/db"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(database *sql.DB) *AdminRepository {
	return &AdminRepository{DB: database}
}

// ListBookings filters by drop-off date and/or status; empty strings mean no
// filter.
func (r *AdminRepository) ListBookings(date, status string) ([]db.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND dropoff_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY dropoff_date DESC, dropoff_time DESC"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		err := rows.Scan(
			&b.ID, &b.Code, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.VehicleMake, &b.VehicleModel, &b.VehicleReg,
			&b.AirlineCode, &b.FlightNumber, &b.FlightScheduleID, &b.SlotType, &b.SlotKey, &b.DropoffDate, &b.DropoffTime,
			&b.ReturnFlightNumber, &b.PickupDate, &b.PickupTime, &b.Package, &b.PricePence, &b.Status, &b.PaymentStatus,
			&b.StripeSessionID, &b.StripePaymentIntentID, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
