package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skypark/internal/db"
)

type FlightRepository struct {
	DB *sql.DB
}

func NewFlightRepository(database *sql.DB) *FlightRepository {
	return &FlightRepository{DB: database}
}

const flightColumns = `
	id, flight_date, scheduled_time, flight_number, airline_code, airline_name,
	direction, origin, destination, capacity_tier`

func (r *FlightRepository) GetFlight(date time.Time, airlineCode, flightNumber string) (*db.FlightSchedule, error) {
	query := `SELECT` + flightColumns + `
		FROM flight_schedules
		WHERE flight_date = $1 AND airline_code = $2 AND flight_number = $3`

	var f db.FlightSchedule
	err := r.DB.QueryRow(query, date, airlineCode, flightNumber).Scan(
		&f.ID, &f.FlightDate, &f.ScheduledTime, &f.FlightNumber, &f.AirlineCode, &f.AirlineName,
		&f.Direction, &f.Origin, &f.Destination, &f.CapacityTier,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying flight %s%s on %s: %w", airlineCode, flightNumber, date.Format("2006-01-02"), err)
	}
	return &f, nil
}

func (r *FlightRepository) ListFlights(date time.Time, direction string) ([]db.FlightSchedule, error) {
	query := `SELECT` + flightColumns + `
		FROM flight_schedules
		WHERE flight_date = $1 AND direction = $2
		ORDER BY scheduled_time, airline_code, flight_number`

	rows, err := r.DB.Query(query, date, direction)
	if err != nil {
		return nil, fmt.Errorf("error listing flights: %w", err)
	}
	defer rows.Close()

	var flights []db.FlightSchedule
	for rows.Next() {
		var f db.FlightSchedule
		err := rows.Scan(
			&f.ID, &f.FlightDate, &f.ScheduledTime, &f.FlightNumber, &f.AirlineCode, &f.AirlineName,
			&f.Direction, &f.Origin, &f.Destination, &f.CapacityTier,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning flight row: %w", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating flight rows: %w", err)
	}
	return flights, nil
}
