package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arbrepalabres/backend/api/routes"
	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/internal/debates"
	"github.com/arbrepalabres/backend/internal/ledger"
	"github.com/arbrepalabres/backend/internal/notifications"
	"github.com/arbrepalabres/backend/internal/registration"
	"github.com/arbrepalabres/backend/internal/withdrawals"
	"github.com/arbrepalabres/backend/pkg/config"
	"github.com/arbrepalabres/backend/pkg/db"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/metrics"
	"github.com/arbrepalabres/backend/pkg/migrate"
	"github.com/arbrepalabres/backend/pkg/outbox"
	"github.com/arbrepalabres/backend/pkg/pubsub"
	"github.com/arbrepalabres/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	candidateRepo := candidates.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	debateRepo := debates.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	registrationService, err := registration.NewService(candidateRepo, ledgerRepo, dbClient, outboxService, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create registration service", err)
		os.Exit(1)
	}
	candidatesService, err := candidates.NewService(candidateRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create candidates service", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(ledgerRepo, candidateRepo, dbClient, outboxService, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	withdrawalsService, err := withdrawals.NewService(candidateRepo, ledgerRepo, dbClient, outboxService, logg, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create withdrawals service", err)
		os.Exit(1)
	}
	debatesService, err := debates.NewService(debateRepo, candidateRepo, ledgerRepo, dbClient, outboxService, logg, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create debates service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			dbClient,
			redisClient,
			pubsubClient,
			registrationService,
			candidatesService,
			ledgerService,
			withdrawalsService,
			debatesService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
