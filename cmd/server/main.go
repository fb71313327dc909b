package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"event-registration-platform/internal/config"
	"event-registration-platform/internal/database"
	"event-registration-platform/internal/handlers"
	"event-registration-platform/internal/middleware"
	"event-registration-platform/internal/repositories"
	"event-registration-platform/internal/services"

	"github.com/go-chi/chi/v5"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize repositories
	registrationRepo := repositories.NewRegistrationRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)

	// Initialize storage, falling back to the mock when R2 is not configured
	var storage services.StorageService
	r2, err := services.NewR2Service(cfg.Storage)
	if err != nil {
		log.Printf("Warning: R2 storage unavailable (%v), using mock storage", err)
		storage = services.NewMockStorageService()
	} else {
		storage = r2
	}

	// Initialize notifications, falling back to the mock without SMTP config
	var notifier services.NotificationService
	if cfg.SMTP.User != "" || cfg.Server.Env == "production" {
		smtpNotifier, err := services.NewSMTPNotificationService(cfg.SMTP)
		if err != nil {
			log.Fatal("Failed to initialize SMTP notifications:", err)
		}
		notifier = smtpNotifier
	} else {
		log.Println("SMTP not configured, notifications will be logged only")
		notifier = services.NewMockNotificationService()
	}

	// Initialize services
	registrationService := services.NewRegistrationService(
		registrationRepo,
		eventRepo,
		storage,
		notifier,
		cfg.Notifications.NotifyOnReject,
	)
	eventService := services.NewEventService(eventRepo, categoryRepo, registrationRepo, storage)

	// Initialize handlers
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	eventHandler := handlers.NewEventHandler(eventService)

	router := buildRouter(cfg, registrationHandler, eventHandler)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s (env: %s)", addr, cfg.Server.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server failed:", err)
	}
}

func buildRouter(
	cfg *config.Config,
	registrationHandler *handlers.RegistrationHandler,
	eventHandler *handlers.EventHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))

	adminOnly := middleware.RequireAdmin(cfg.Auth.JWTSecret)
	registerLimiter := middleware.NewRateLimiter(10, time.Hour)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", eventHandler.ListEvents)
		r.With(adminOnly).Post("/events", eventHandler.CreateEvent)

		r.Route("/events/{id}", func(r chi.Router) {
			r.Get("/", eventHandler.GetEvent)

			r.With(registerLimiter.Middleware).Post("/register", registrationHandler.Register)
			r.Post("/payment", registrationHandler.SubmitPayment)
			r.Post("/discount/validate", registrationHandler.ValidateDiscount)
			r.Get("/check-team-name", registrationHandler.CheckTeamName)
			r.Get("/registered", registrationHandler.CheckRegistered)
			r.Get("/payment-status/{identifier}", registrationHandler.PaymentStatus)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Put("/", eventHandler.UpdateEvent)
				r.Delete("/", eventHandler.DeleteEvent)
				r.Get("/registrations", registrationHandler.ListRegistrations)
				r.Post("/registrations/{teamName}/approve", registrationHandler.Approve)
				r.Post("/registrations/{teamName}/reject", registrationHandler.Reject)
			})
		})

		r.Get("/competitions", eventHandler.BrowseCompetitions)
		r.Get("/competitions/calendar", eventHandler.CompetitionsCalendar)

		r.Get("/categories", eventHandler.ListCategories)
		r.With(adminOnly).Post("/categories", eventHandler.CreateCategory)

		r.Get("/users/registrations", registrationHandler.UserRegistrations)
	})

	return r
}
