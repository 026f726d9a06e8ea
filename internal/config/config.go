package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings shared by every binary in the gateway.
type Config struct {
	// Server
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`

	// Database
	PostgresURL string `envconfig:"POSTGRES_URL" required:"true"`

	// Redis (idempotency cache only — the rate limiter is in-process, see §9)
	RedisURL string `envconfig:"REDIS_URL" required:"true"`

	// NATS (progress bus)
	NATSURL string `envconfig:"NATS_URL" default:"nats://localhost:4222"`

	// Temporal
	TemporalHostPort  string `envconfig:"TEMPORAL_HOST_PORT" default:"localhost:7233"`
	TemporalNamespace string `envconfig:"TEMPORAL_NAMESPACE" default:"default"`

	// Observability
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Job lifecycle
	JobCleanupDelay time.Duration `envconfig:"JOB_CLEANUP_DELAY" default:"60s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
