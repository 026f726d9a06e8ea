// Package provider defines the PhoneProvider capability (§4.2): turning a
// LookupParams into a PhoneResult by calling one external backend, gated
// through the provider's own QueuedRateLimiter.
package provider

import (
	"context"
	"time"

	"lead-gateway/internal/config"
	"lead-gateway/internal/observability"
	"lead-gateway/internal/ratelimit"
)

// LookupParams is the normalized input to a phone lookup, built by
// PhoneLookupWorkflow before trying any provider.
type LookupParams struct {
	FullName       string
	CompanyWebsite string
	JobTitle       string
}

// PhoneResult is what a single provider attempt produces, successful or
// not. A zero-value Phone means "no phone found", not a failure.
type PhoneResult struct {
	Phone     string
	Provider  string
	Cost      float64
	Timestamp time.Time
}

// Stats merges the owned rate limiter's stats with provider identity, for
// the §4.2 getStats() contract.
type Stats struct {
	ratelimit.Stats
	Provider       string
	CostPerRequest float64
	Priority       int
	Enabled        bool
}

// Provider is one external phone-lookup backend.
type Provider interface {
	// Execute runs the provider-specific lookup under the provider's rate
	// limiter and returns a PhoneResult whether or not a phone was found.
	// Cost is charged per attempt that ran, not per phone found.
	Execute(ctx context.Context, params LookupParams) (PhoneResult, error)

	// Lookup is the provider-specific wire call; implementations differ
	// only in request shape, auth placement and result extraction.
	Lookup(ctx context.Context, params LookupParams) (phone string, err error)

	Config() config.ProviderConfig
	Stats() Stats
}

// Base embeds the pieces shared by every concrete provider: its config, its
// owned limiter, and the Execute wrapper that charges cost on every
// completed attempt regardless of outcome.
type Base struct {
	Cfg     config.ProviderConfig
	Limiter *ratelimit.QueuedRateLimiter
	Metrics *observability.Metrics
}

// NewBase constructs the shared provider state, including the owned
// QueuedRateLimiter — created at registry construction and destroyed with
// the registry (§3 Lifecycles). metrics may be nil.
func NewBase(cfg config.ProviderConfig, metrics *observability.Metrics) Base {
	return Base{
		Cfg:     cfg,
		Limiter: ratelimit.New(cfg.RateLimit, cfg.TimeWindow, cfg.MaxConcurrent, cfg.Name, metrics),
		Metrics: metrics,
	}
}

// Close releases the provider's owned limiter's dispatcher goroutine.
func (b Base) Close() {
	b.Limiter.Close()
}

func (b Base) Config() config.ProviderConfig {
	return b.Cfg
}

func (b Base) Stats() Stats {
	return Stats{
		Stats:          b.Limiter.Stats(),
		Provider:       b.Cfg.Name,
		CostPerRequest: b.Cfg.CostPerRequest,
		Priority:       b.Cfg.Priority,
		Enabled:        b.Cfg.Enabled,
	}
}

// Execute is shared across all three variants: admit through the limiter,
// run lookup (which owns its own internal retry policy), and charge cost
// for the attempt regardless of whether a phone was found.
func Execute(ctx context.Context, b Base, lookup func(context.Context, LookupParams) (string, error), params LookupParams) (PhoneResult, error) {
	start := time.Now()
	phone, err := ratelimit.Execute(ctx, b.Limiter, func(ctx context.Context) (string, error) {
		return lookup(ctx, params)
	})

	if b.Metrics != nil {
		b.Metrics.ProviderLatency.WithLabelValues(b.Cfg.Name).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if b.Metrics != nil {
			b.Metrics.ProviderAttemptsTotal.WithLabelValues(b.Cfg.Name, "error").Inc()
		}
		return PhoneResult{}, err
	}

	outcome := "no_phone"
	if phone != "" {
		outcome = "found"
	}
	if b.Metrics != nil {
		b.Metrics.ProviderAttemptsTotal.WithLabelValues(b.Cfg.Name, outcome).Inc()
		b.Metrics.ProviderCostCents.WithLabelValues(b.Cfg.Name).Add(b.Cfg.CostPerRequest * 100)
	}

	return PhoneResult{
		Phone:     phone,
		Provider:  b.Cfg.Name,
		Cost:      b.Cfg.CostPerRequest,
		Timestamp: time.Now(),
	}, nil
}
