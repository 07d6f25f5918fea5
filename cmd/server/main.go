package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"skypark/internal/api"
	"skypark/internal/auth"
	"skypark/internal/repository"
	"skypark/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
)

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	flightRepo := repository.NewFlightRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	priceRepo := repository.NewPriceRepository(database)
	adminRepo := repository.NewAdminRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)
	jobRepo := repository.NewJobRepository(database)

	stripeService := service.NewStripeService()
	senderService := service.NewSenderService()
	bookingService := service.NewBookingService(flightRepo, bookingRepo, priceRepo, stripeService, senderService)
	adminService := service.NewAdminService(adminRepo, priceRepo)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo)
	jobService := service.NewJobService(jobRepo, bookingService)

	userHandler := api.NewUserBookingHandler(bookingService)
	adminHandler := api.NewAdminHandler(adminService, bookingService)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthService)
	stripeHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), bookingService, stripeService)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/flights", userHandler.ListFlights).Methods("GET")
	r.HandleFunc("/api/slots/available", userHandler.ListAvailableSlots).Methods("POST")
	r.HandleFunc("/api/capacity", userHandler.CheckCapacity).Methods("POST")
	r.HandleFunc("/api/quote", userHandler.Quote).Methods("POST")
	r.HandleFunc("/api/prices", userHandler.GetPrices).Methods("GET")
	r.HandleFunc("/api/bookings", userHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{code}", userHandler.GetBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{code}", userHandler.CancelBooking).Methods("DELETE")

	// Stripe
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/api/stripe/session", stripeHandler.GetBookingBySessionID).Methods("GET")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings", adminHandler.CreateBooking).Methods("POST")
	admin.HandleFunc("/bookings/{code}", adminHandler.CancelBooking).Methods("DELETE")
	admin.HandleFunc("/capacity", adminHandler.CheckCapacity).Methods("GET")
	admin.HandleFunc("/prices", adminHandler.ListPrices).Methods("GET")
	admin.HandleFunc("/prices", adminHandler.UpdatePrice).Methods("PUT")
	admin.HandleFunc("/admins", adminAuthHandler.CreateAdmin).Methods("POST")

	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := jobService.CompleteFinishedBookings(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
		if err := jobService.CancelStalePendingBookings(48 * time.Hour); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{os.Getenv("FRONTEND_URL"), "http://localhost:3000"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler(r)))
}
