package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"lead-gateway/internal/config"
	"lead-gateway/internal/emailverify"
	"lead-gateway/internal/observability"
	"lead-gateway/internal/provider"
	"lead-gateway/internal/provider/astra"
	"lead-gateway/internal/provider/nimbus"
	"lead-gateway/internal/provider/orion"
	wf "lead-gateway/internal/workflow"
	"lead-gateway/internal/workflow/taskqueue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.GetLoggerFromEnv(cfg.LogLevel)
	defer logger.Sync()
	logger.Info("starting lead-gateway worker", zap.String("log_level", cfg.LogLevel))

	// Provider/rate-limiter metrics are exercised here since activities
	// (and therefore QueuedRateLimiter admission and provider.Execute) run
	// in the worker process, not the API process.
	metrics := observability.NewMetrics(prometheus.NewRegistry())

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

	activities := &wf.Activities{
		Registry: registry,
		Verifier: emailverify.New(0.9),
	}

	var workers []worker.Worker
	for _, qcfg := range taskqueue.Defaults() {
		w := worker.New(temporalClient, qcfg.Queue, taskqueue.WorkerOptions(qcfg))
		wf.RegisterAll(w, activities)

		if err := w.Start(); err != nil {
			logger.Fatal("failed to start worker", zap.String("queue", qcfg.Queue), zap.Error(err))
		}
		logger.Info("worker listening", zap.String("queue", qcfg.Queue))
		workers = append(workers, w)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	for _, w := range workers {
		w.Stop()
	}
	logger.Info("lead-gateway worker stopped")
}
