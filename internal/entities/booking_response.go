package entities

import "time"

type BookingResponse struct {
	Code          string `json:"code"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleReg   string `json:"vehicle_reg"`

	AirlineCode  string `json:"airline_code"`
	FlightNumber string `json:"flight_number"`
	SlotType     string `json:"slot_type"`
	DropoffDate  string `json:"drop_off_date"`
	DropoffTime  string `json:"drop_off_time"`

	ReturnFlightNumber string `json:"return_flight_number"`
	PickupDate         string `json:"pickup_date"`
	PickupTime         string `json:"pickup_time"`

	Package       string    `json:"package"`
	PricePence    int       `json:"price_pence"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
