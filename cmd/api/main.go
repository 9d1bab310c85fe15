package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smartmed/consultas/internal/adapters/cache"
	"github.com/smartmed/consultas/internal/adapters/database"
	"github.com/smartmed/consultas/internal/api/handlers"
	"github.com/smartmed/consultas/internal/api/routes"
	"github.com/smartmed/consultas/internal/application/services"
	"github.com/smartmed/consultas/internal/infrastructure/clients/postgres"
	"github.com/smartmed/consultas/internal/infrastructure/clients/redis"
	"github.com/smartmed/consultas/internal/infrastructure/observability"
	"github.com/smartmed/consultas/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.Log.ServiceName, cfg.Log.Env)
	logger := observability.GetLogger()

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Redis is required: booking correctness depends on the per-physician
	// lock, not just on caching.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()
	logger.Info().Msg("Redis client initialized")

	cacheProvider := cache.NewRedisAdapter(redisClient)
	slotLocker := cache.NewRedisSlotLocker(redisClient)

	// Initialize adapters
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	physicianAdapter := database.NewCachedPhysicianAdapter(
		database.NewPhysicianAdapter(pgClient),
		cacheProvider,
	)
	patientAdapter := database.NewPatientAdapter(pgClient)
	receptionistAdapter := database.NewReceptionistAdapter(pgClient)
	specialtyAdapter := database.NewSpecialtyAdapter(pgClient)
	insurancePlanAdapter := database.NewInsurancePlanAdapter(pgClient)
	paymentMethodAdapter := database.NewPaymentMethodAdapter(pgClient)

	// Initialize services
	schedulerService := services.NewSchedulerService(
		appointmentAdapter,
		physicianAdapter,
		patientAdapter,
		receptionistAdapter,
		specialtyAdapter,
		insurancePlanAdapter,
		paymentMethodAdapter,
		slotLocker,
		cfg.Scheduling.HorizonMonths,
		cfg.Scheduling.SlotLockTTL,
	)
	appointmentService := services.NewAppointmentService(
		appointmentAdapter,
		physicianAdapter,
		patientAdapter,
		receptionistAdapter,
		specialtyAdapter,
		insurancePlanAdapter,
		paymentMethodAdapter,
		slotLocker,
		cfg.Scheduling.RescheduleLeadTime,
		cfg.Scheduling.SlotLockTTL,
	)
	physicianService := services.NewPhysicianService(physicianAdapter, specialtyAdapter)
	insuranceService := services.NewInsuranceService(insurancePlanAdapter)
	reportService := services.NewReportService(
		appointmentAdapter,
		insurancePlanAdapter,
		paymentMethodAdapter,
	)

	// Initialize handlers
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, schedulerService)
	physicianHandler := handlers.NewPhysicianHandler(physicianService, schedulerService)
	insuranceHandler := handlers.NewInsuranceHandler(insuranceService)
	reportHandler := handlers.NewReportHandler(reportService)

	router := routes.NewRouter(
		appointmentHandler,
		physicianHandler,
		insuranceHandler,
		reportHandler,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info().Str("addr", addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
