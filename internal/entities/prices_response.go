package entities

type PriceResponse struct {
	Package      string `json:"package"`
	DurationTier string `json:"duration_tier"`
	PricePence   int    `json:"price_pence"`
}
