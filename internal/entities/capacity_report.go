package entities

// DayCapacity reports one calendar day of the requested stay range.
type DayCapacity struct {
	Date      string `json:"date"`
	Occupied  int    `json:"occupied"`
	Available int    `json:"available"`
}

type CapacityReport struct {
	AllAvailable bool          `json:"all_available"`
	Days         []DayCapacity `json:"days"`
}
