package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Majedzeyad/cancare-api/internal/config"
	"github.com/Majedzeyad/cancare-api/internal/email"
	"github.com/Majedzeyad/cancare-api/internal/repository/postgres"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/messaging/redis"
	"github.com/Majedzeyad/cancare-api/pkg/worker"
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

	notifier := worker.NewNotifier(
		broker,
		email.NewService(cfg.SMTP),
		postgres.NewNurseRepository(db),
		postgres.NewUserRepository(db),
		postgres.NewChatRepository(db),
		appLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("shutting down worker")
		cancel()
	}()

	appLogger.Info("notification worker started")
	if err := notifier.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("worker failed")
	}
}
