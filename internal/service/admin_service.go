package service

import (
	"skypark/internal/db"
	"skypark/internal/entities"
	"skypark/internal/repository"
)

// AdminService serves the back-office screens: booking lists, price edits.
type AdminService struct {
	adminRepo *repository.AdminRepository
	priceRepo *repository.PriceRepository
}

func NewAdminService(adminRepo *repository.AdminRepository, priceRepo *repository.PriceRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo, priceRepo: priceRepo}
}

func (s *AdminService) ListBookings(date, status string) (*entities.BookingsList, error) {
	bookings, err := s.adminRepo.ListBookings(date, status)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingsList{Total: len(bookings), Bookings: []entities.BookingResponse{}}
	for i := range bookings {
		list.Bookings = append(list.Bookings, *bookingResponse(&bookings[i]))
	}
	return list, nil
}

func (s *AdminService) ListPrices() ([]db.PackagePrice, error) {
	return s.priceRepo.GetPrices()
}

func (s *AdminService) UpdatePackagePrice(pkg, durationTier string, pricePence int) error {
	return s.priceRepo.UpdatePackagePrice(pkg, durationTier, pricePence)
}
