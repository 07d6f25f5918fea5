package service

import (
	"fmt"
	"log"
	"time"

	"skypark/internal/db"
	"skypark/internal/entities"
	"skypark/internal/timeslot"
)

// SenderService composes and fires booking notifications. Sends run in a
// goroutine after the state change has committed; failures are logged, never
// surfaced to the customer.
type SenderService struct{}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func emailData(b *db.Booking, status string) entities.BookingEmailData {
	return entities.BookingEmailData{
		CustomerName: b.CustomerName,
		BookingCode:  b.Code,
		VehicleMake:  b.VehicleMake,
		VehicleReg:   b.VehicleReg,
		Flight:       b.AirlineCode + b.FlightNumber,
		DropoffLine:  fmt.Sprintf("%s at %s", timeslot.DateString(b.DropoffDate), b.DropoffTime),
		PickupLine:   fmt.Sprintf("%s at %s", timeslot.DateString(b.PickupDate), b.PickupTime),
		Status:       status,
		CurrentYear:  time.Now().Year(),
	}
}

func (s *SenderService) SendBookingEmail(b *db.Booking, status string) {
	data := emailData(b, status)

	subject := fmt.Sprintf("Your SkyPark booking is %s - Code: %s", data.Status, data.BookingCode)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour SkyPark Meet & Greet booking is %s.\n\n"+
			"Booking details:\n"+
			"Booking code: %s\n"+
			"Vehicle: %s (Reg: %s)\n"+
			"Flight: %s\n"+
			"Drop-off: %s\n"+
			"Pickup: %s\n\n"+
			"Thank you for choosing SkyPark.\n\n"+
			"SkyPark %d. All rights reserved.",
		data.CustomerName, data.Status, data.BookingCode, data.VehicleMake, data.VehicleReg,
		data.Flight, data.DropoffLine, data.PickupLine, data.CurrentYear,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your SkyPark Meet &amp; Greet booking is <strong>%s</strong>.</p>"+
			"<ul><li>Booking code: %s</li><li>Vehicle: %s (Reg: %s)</li><li>Flight: %s</li>"+
			"<li>Drop-off: %s</li><li>Pickup: %s</li></ul>"+
			"<p>Thank you for choosing SkyPark.</p>",
		data.CustomerName, data.Status, data.BookingCode, data.VehicleMake, data.VehicleReg,
		data.Flight, data.DropoffLine, data.PickupLine,
	)

	go func(toEmail, toName string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, plainTextBody, htmlBody); err != nil {
			log.Printf("ALERT (async): email for booking %s failed: %v", data.BookingCode, err)
		}
	}(b.CustomerEmail, b.CustomerName)
}

func (s *SenderService) SendBookingSMS(b *db.Booking, status string) {
	if b.CustomerPhone == "" {
		return
	}
	message := fmt.Sprintf("SkyPark: booking %s is %s.\nDrop-off: %s at %s.\nFull details in your email.",
		b.Code, status, timeslot.DateString(b.DropoffDate), b.DropoffTime)

	go func(phone string) {
		if err := SendSMS(phone, message); err != nil {
			log.Printf("ALERT (async): SMS for booking %s failed: %v", b.Code, err)
		}
	}(b.CustomerPhone)
}
