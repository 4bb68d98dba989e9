package main

import (
	"database/sql"
	"net/http"

	"benevita/internal/api"
	"benevita/internal/auth"
	"benevita/internal/config"
	"benevita/internal/logger"
	"benevita/internal/repository"
	"benevita/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
)

func main() {
	godotenv.Load()
	config.LoadConfig()
	logger.Initialize()
	log := logger.Sugar()
	defer logger.Get().Sync()

	cfg := config.AppConfig
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = cfg.StripeSecretKey

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})

	bookingRepo := repository.NewBookingRepository(db)
	unavailabilityRepo := repository.NewUnavailabilityRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	jobRepo := repository.NewJobRepository(db)

	cache := service.NewCalendarCache(rdb)
	sender := service.NewSenderService(log)
	invoices := service.NewFileInvoiceStore(cfg.InvoiceDir)

	calendarSvc := service.NewCalendarService(bookingRepo, unavailabilityRepo, providerRepo, cache, log)
	unavailabilitySvc := service.NewUnavailabilityService(unavailabilityRepo, bookingRepo, calendarSvc, log)
	bookingSvc := service.NewBookingService(
		bookingRepo, providerRepo, accountRepo, calendarSvc,
		service.NewStripeService(), sender, cfg.PaymentTimeout(), log,
	)
	companionSvc := service.NewCompanionService(bookingRepo, providerRepo, accountRepo, invoices)
	authSvc := service.NewAuthService(accountRepo)
	jobSvc := service.NewJobService(jobRepo, cfg.PendingGrace(), log)

	calendarHandler := api.NewCalendarHandler(calendarSvc, providerRepo)
	unavailabilityHandler := api.NewUnavailabilityHandler(unavailabilitySvc)
	bookingHandler := api.NewBookingHandler(bookingSvc, companionSvc)
	stripeHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, bookingSvc, log)
	authHandler := api.NewAuthHandler(authSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")

	// Authenticated endpoints
	app := r.PathPrefix("/api").Subrouter()
	app.Use(auth.Middleware(cfg.JWTSecret))
	app.HandleFunc("/providers", calendarHandler.ListProviders).Methods("GET")
	app.HandleFunc("/providers/{id}/calendar", calendarHandler.WeekCalendar).Methods("GET")
	app.HandleFunc("/providers/{id}/slot-holder", bookingHandler.SlotHolder).Methods("GET")
	app.HandleFunc("/unavailability", unavailabilityHandler.Declare).Methods("POST")
	app.HandleFunc("/unavailability", unavailabilityHandler.List).Methods("GET")
	app.HandleFunc("/unavailability/{id}", unavailabilityHandler.Revoke).Methods("DELETE")
	app.HandleFunc("/bookings", bookingHandler.Reserve).Methods("POST")
	app.HandleFunc("/bookings", bookingHandler.List).Methods("GET")
	app.HandleFunc("/bookings/{id}/cancel", bookingHandler.Cancel).Methods("POST")
	app.HandleFunc("/bookings/{id}/note", bookingHandler.Rate).Methods("POST")

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcileCronSpec, func() {
		if err := jobSvc.ReconcilePendingBookings(); err != nil {
			log.Errorw("reconciliation sweep failed", "err", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reconciliation job: %v", err)
	}
	c.Start()
	defer c.Stop()

	corsMiddleware := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	log.Infof("Server running on port %s", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, handlers.RecoveryHandler()(corsMiddleware(r))))
}
