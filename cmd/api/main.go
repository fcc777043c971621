package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pocketpilot/backend/internal/config"
	"github.com/pocketpilot/backend/internal/handler"
	"github.com/pocketpilot/backend/internal/logger"
	"github.com/pocketpilot/backend/internal/repository"
	"github.com/pocketpilot/backend/internal/scheduler"
	"github.com/pocketpilot/backend/internal/service"
)

func main() {
	cfg := config.Load()

	slogger := logger.Logger()
	slog.SetDefault(slogger)

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/pocketpilot?sslmode=disable"
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	billRepo := repository.NewBillRepository(db)
	spendingRepo := repository.NewSpendingRepository(db)
	pushRepo := repository.NewPushRepository(db)

	// Services
	clock := service.SystemClock{}
	userService := service.NewUserService(userRepo)
	reminderService := service.NewReminderService(billRepo, pushRepo, cfg, clock)
	billService := service.NewBillService(billRepo, reminderService, clock)
	spendingService := service.NewSpendingService(spendingRepo, clock)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	billHandler := handler.NewBillHandler(billService)
	spendingHandler := handler.NewSpendingHandler(spendingService)
	pushHandler := handler.NewPushHandler(reminderService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	// VAPID key is needed before the client can subscribe
	r.Get("/api/notifications/vapid-public-key", pushHandler.VAPIDPublicKey)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(handler.AuthMiddleware)

		// Current user
		r.Get("/api/auth/me", authHandler.Me)

		// Bills
		r.Get("/api/bills", billHandler.List)
		r.Post("/api/bills", billHandler.Create)
		r.Get("/api/bills/{id}", billHandler.Get)
		r.Put("/api/bills/{id}", billHandler.Update)
		r.Delete("/api/bills/{id}", billHandler.Delete)
		r.Post("/api/bills/{id}/pay", billHandler.MarkAsPaid)

		// Spending tracker
		r.Post("/api/spending/profile", spendingHandler.SetupProfile)
		r.Put("/api/spending/profile", spendingHandler.EditProfile)
		r.Get("/api/spending/profile", spendingHandler.GetProfile)
		r.Delete("/api/spending/tracker", spendingHandler.DeleteTracker)
		r.Post("/api/spending/check-in", spendingHandler.CheckIn)
		r.Get("/api/spending/check-ins", spendingHandler.ListCheckIns)
		r.Get("/api/spending/health", spendingHandler.GetHealth)
		r.Get("/api/spending/recommendations", spendingHandler.GetRecommendations)
		r.Get("/api/spending/projection", spendingHandler.GetProjection)

		// Push notifications
		r.Post("/api/notifications/subscribe", pushHandler.Subscribe)
		r.Delete("/api/notifications/unsubscribe", pushHandler.Unsubscribe)
	})

	// Daily reminder scan
	var reminderScheduler *scheduler.Scheduler
	if cfg.ReminderEnabled {
		schedCfg := scheduler.Config{
			Schedule: cfg.ReminderSchedule,
			Timeout:  cfg.ReminderTimeout,
			Enabled:  cfg.ReminderEnabled,
		}
		reminderScheduler = scheduler.New(schedCfg, reminderService, slogger)
		if err := reminderScheduler.Start(); err != nil {
			slogger.Error("Failed to start reminder scheduler", slog.String("error", err.Error()))
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slogger.Info("Shutting down server...")

		if reminderScheduler != nil {
			ctx := reminderScheduler.Stop()
			<-ctx.Done()
			slogger.Info("Scheduler stopped")
		}

		if err := server.Shutdown(context.Background()); err != nil {
			slogger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Server failed: %v", err)
	}
}
