package entities

// BookingRequest carries everything needed to create a booking. Dates are
// "YYYY-MM-DD" strings; scheduled times come from the flight schedule, not
// from the caller.
type BookingRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleReg   string `json:"vehicle_reg"`

	FlightDate   string `json:"flight_date"`
	AirlineCode  string `json:"airline_code"`
	FlightNumber string `json:"flight_number"`
	SlotType     string `json:"slot_type"`

	ReturnFlightDate   string `json:"return_flight_date"`
	ReturnAirlineCode  string `json:"return_airline_code"`
	ReturnFlightNumber string `json:"return_flight_number"`

	Package       string `json:"package"`
	PaymentMethod string `json:"payment_method"` // "online" or "on_arrival"

	// Staff bookings only; ignored on the public endpoint.
	OverridePricePence *int `json:"override_price_pence,omitempty"`
}
