package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Majedzeyad/cancare-api/internal/config"
	authHandler "github.com/Majedzeyad/cancare-api/internal/handler/auth"
	chatHandler "github.com/Majedzeyad/cancare-api/internal/handler/chat"
	doctorHandler "github.com/Majedzeyad/cancare-api/internal/handler/doctor"
	healthHandler "github.com/Majedzeyad/cancare-api/internal/handler/health"
	nurseHandler "github.com/Majedzeyad/cancare-api/internal/handler/nurse"
	patientHandler "github.com/Majedzeyad/cancare-api/internal/handler/patient"
	responsibleHandler "github.com/Majedzeyad/cancare-api/internal/handler/responsible"
	"github.com/Majedzeyad/cancare-api/internal/middleware"
	"github.com/Majedzeyad/cancare-api/internal/repository/postgres"
	"github.com/Majedzeyad/cancare-api/internal/router"
	chatService "github.com/Majedzeyad/cancare-api/internal/service/chat"
	dashboardService "github.com/Majedzeyad/cancare-api/internal/service/dashboard"
	doctorService "github.com/Majedzeyad/cancare-api/internal/service/doctor"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	nurseService "github.com/Majedzeyad/cancare-api/internal/service/nurse"
	"github.com/Majedzeyad/cancare-api/internal/service/override"
	"github.com/Majedzeyad/cancare-api/internal/service/patientportal"
	responsibleService "github.com/Majedzeyad/cancare-api/internal/service/responsible"
	"github.com/Majedzeyad/cancare-api/pkg/auth"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/messaging/redis"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.New("cancare")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	nurseRepo := postgres.NewNurseRepository(db)
	responsibleRepo := postgres.NewResponsibleRepository(db)
	labRepo := postgres.NewLabRepository(db)
	rxRepo := postgres.NewPrescriptionRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	overrideRepo := postgres.NewOverrideRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	postRepo := postgres.NewPostRepository(db)

	// Services
	tokens := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	identitySvc := identity.NewService(userRepo, tokens, hasher)

	doctorSvc := doctorService.NewService(
		doctorRepo, patientRepo, labRepo, rxRepo, recordRepo, appointmentRepo,
		doctorService.Config{
			LookupConcurrency: cfg.Lookup.Concurrency,
			NameCacheTTL:      cfg.Lookup.CacheTTL,
		},
		m, appLogger,
	)
	nurseSvc := nurseService.NewService(nurseRepo, patientRepo, appointmentRepo, m, appLogger)
	patientSvc := patientportal.NewService(patientRepo, labRepo, rxRepo, appointmentRepo, postRepo, m, appLogger)
	responsibleSvc := responsibleService.NewService(responsibleRepo, patientRepo, labRepo, m, appLogger)
	overrideSvc := override.NewService(
		overrideRepo, nurseRepo, doctorRepo, broker,
		override.Config{
			GuardedTransitions: cfg.Override.GuardedTransitions,
			LookupConcurrency:  cfg.Lookup.Concurrency,
			NameCacheTTL:       cfg.Lookup.CacheTTL,
		},
		m, appLogger,
	)
	dashboardSvc := dashboardService.NewService(
		doctorRepo, responsibleRepo, patientRepo, labRepo, overrideRepo, rxRepo, appointmentRepo,
		dashboardService.Config{RecentWindowDays: cfg.Dashboard.RecentWindowDays},
		m, appLogger,
	)
	chatSvc := chatService.NewService(chatRepo, broker, m, appLogger)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(identitySvc),
		doctorHandler.NewHandler(doctorSvc, overrideSvc, dashboardSvc),
		nurseHandler.NewHandler(nurseSvc, overrideSvc),
		patientHandler.NewHandler(patientSvc),
		responsibleHandler.NewHandler(responsibleSvc, dashboardSvc),
		chatHandler.NewHandler(chatSvc),
		router.RouterConfig{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			MetricsPrefix:  "cancare_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
