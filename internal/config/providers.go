package config

import "time"

// ProviderConfig describes one external phone-lookup backend. Instances are
// created once at process start from static configuration and never mutated
// (§3 Lifecycles).
type ProviderConfig struct {
	Name            string
	Priority        int
	CostPerRequest  float64
	RateLimit       int
	TimeWindow      time.Duration
	MaxConcurrent   int
	Enabled         bool
	Timeout         time.Duration
	APIKey          string
	Endpoint        string
}

// ProviderKeys carries the secrets injected at process start; everything
// else about a provider is fixed by §6 of the spec.
type ProviderKeys struct {
	OrionAPIKey  string `envconfig:"ORION_API_KEY" default:"mySecretKey123"`
	AstraAPIKey  string `envconfig:"ASTRA_API_KEY" default:"1234jhgf"`
	NimbusAPIKey string `envconfig:"NIMBUS_API_KEY" default:"000099998888"`
}

// DefaultProviderConfigs returns the three provider configurations specified
// in §6, keyed with secrets from keys. Priorities/costs/rate limits are part
// of the specification, not environment-tunable.
func DefaultProviderConfigs(keys ProviderKeys) []ProviderConfig {
	return []ProviderConfig{
		{
			Name:           "Orion",
			Priority:       1,
			CostPerRequest: 0.02,
			RateLimit:      5,
			TimeWindow:     time.Second,
			MaxConcurrent:  3,
			Enabled:        true,
			Timeout:        10 * time.Second,
			APIKey:         keys.OrionAPIKey,
			Endpoint:       "https://api.genesy.ai/api/tmp/orionConnect",
		},
		{
			Name:           "Astra",
			Priority:       2,
			CostPerRequest: 0.01,
			RateLimit:      10,
			TimeWindow:     time.Second,
			MaxConcurrent:  10,
			Enabled:        true,
			Timeout:        10 * time.Second,
			APIKey:         keys.AstraAPIKey,
			Endpoint:       "https://api.genesy.ai/api/tmp/astraDialer",
		},
		{
			Name:           "Nimbus",
			Priority:       3,
			CostPerRequest: 0.015,
			RateLimit:      2,
			TimeWindow:     time.Second,
			MaxConcurrent:  2,
			Enabled:        true,
			Timeout:        10 * time.Second,
			APIKey:         keys.NimbusAPIKey,
			Endpoint:       "https://api.genesy.ai/api/tmp/numbusLookup",
		},
	}
}
