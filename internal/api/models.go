package api

// Slot listing
type AvailableSlotsRequest struct {
	FlightDate   string `json:"flight_date"`
	FlightTime   string `json:"flight_time,omitempty"`
	AirlineCode  string `json:"airline_code"`
	FlightNumber string `json:"flight_number"`
}

// Capacity
type CapacityRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Booking lookup
type BookingLookupRequest struct {
	Email string `json:"email"`
}

// Admin price editing
type UpdatePriceRequest struct {
	Package      string `json:"package"`
	DurationTier string `json:"duration_tier"`
	PricePence   int    `json:"price_pence"`
}
