package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"lead-gateway/internal/api"
	"lead-gateway/internal/auth"
	"lead-gateway/internal/config"
	"lead-gateway/internal/costledger"
	"lead-gateway/internal/jobs"
	"lead-gateway/internal/leads"
	"lead-gateway/internal/observability"
	"lead-gateway/internal/orchestrator"
	"lead-gateway/internal/persistence"
	"lead-gateway/internal/progress"
	"lead-gateway/internal/provider"
	"lead-gateway/internal/provider/astra"
	"lead-gateway/internal/provider/nimbus"
	"lead-gateway/internal/provider/orion"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.GetLoggerFromEnv(cfg.LogLevel)
	defer logger.Sync()
	logger.Info("starting lead-gateway API", zap.String("log_level", cfg.LogLevel))

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	ctx := context.Background()

	postgres, err := persistence.NewPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer postgres.Close()

	if err := postgres.RunMigrations("migrations"); err != nil {
		logger.Warn("failed to run migrations", zap.Error(err))
	}

	redis, err := persistence.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	bus, err := progress.NewBus(cfg.NATSURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer bus.Close()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Fatal("failed to connect to temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	var keys config.ProviderKeys
	if err := envconfig.Process("", &keys); err != nil {
		logger.Fatal("failed to load provider keys", zap.Error(err))
	}
	providerConfigs := config.DefaultProviderConfigs(keys)
	providers := make([]provider.Provider, 0, len(providerConfigs))
	for _, pc := range providerConfigs {
		switch pc.Name {
		case "Orion":
			providers = append(providers, orion.New(pc, metrics))
		case "Astra":
			providers = append(providers, astra.New(pc, metrics))
		case "Nimbus":
			providers = append(providers, nimbus.New(pc, metrics))
		}
	}
	registry := provider.NewRegistry(providers)
	defer registry.Close()

	providerNames := make([]string, 0, len(registry.Ordered()))
	for _, p := range registry.Ordered() {
		providerNames = append(providerNames, p.Config().Name)
	}

	leadStore := leads.NewPostgresStore(postgres, logger)
	ledger := costledger.NewLedger(postgres, logger)
	tracker := jobs.NewTracker(logger, cfg.JobCleanupDelay, metrics)
	idempotency := orchestrator.NewIdempotencyCache(redis, logger)
	authService := auth.NewService(postgres, logger)

	orch := &orchestrator.Orchestrator{
		Temporal:      temporalClient,
		Leads:         leadStore,
		Tracker:       tracker,
		Bus:           bus,
		Ledger:        ledger,
		Idempotency:   idempotency,
		ProviderNames: providerNames,
		Logger:        logger,
		Metrics:       metrics,
	}

	handlers := api.NewHandlers(tracker, ledger, orch)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("fiber error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})

	api.SetupMiddleware(app, logger, metrics)
	api.SetupRoutes(app, handlers, authService)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("lead-gateway API started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("failed to shutdown gracefully", zap.Error(err))
	}

	logger.Info("lead-gateway API stopped")
}
