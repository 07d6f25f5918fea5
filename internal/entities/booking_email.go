package entities

type BookingEmailData struct {
	CustomerName string
	BookingCode  string
	VehicleMake  string
	VehicleReg   string
	Flight       string
	DropoffLine  string
	PickupLine   string
	Status       string
	CurrentYear  int
}
