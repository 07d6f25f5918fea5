package entities

import "skypark/internal/timeslot"

// QuoteResponse previews the derived windows and price before a booking is
// attempted.
type QuoteResponse struct {
	Dropoff      *timeslot.Summary `json:"drop_off"`
	Pickup       *timeslot.Summary `json:"pickup"`
	DurationTier string            `json:"duration_tier"`
	PricePence   int               `json:"price_pence"`
}
