package entities

// AvailableSlot is one bookable drop-off window. Booked slots are never
// listed; they disappear rather than show as unavailable.
type AvailableSlot struct {
	SlotID      string `json:"slot_id"`
	SlotType    string `json:"slot_type"`
	Label       string `json:"label"`
	DropoffDate string `json:"drop_off_date"`
	DropoffTime string `json:"drop_off_time"`
	Overnight   bool   `json:"overnight"`
}

type AvailableSlotsResponse struct {
	Slots          []AvailableSlot `json:"slots"`
	AllSlotsBooked bool            `json:"all_slots_booked"`
	ContactMessage string          `json:"contact_message,omitempty"`
}
