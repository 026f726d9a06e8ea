package provider_test

import (
	"context"
	"testing"
	"time"

	"lead-gateway/internal/config"
	"lead-gateway/internal/provider"
)

type fakeProvider struct {
	cfg   config.ProviderConfig
	phone string
}

func (f *fakeProvider) Execute(ctx context.Context, params provider.LookupParams) (provider.PhoneResult, error) {
	return provider.PhoneResult{Phone: f.phone, Provider: f.cfg.Name, Cost: f.cfg.CostPerRequest, Timestamp: time.Now()}, nil
}

func (f *fakeProvider) Lookup(ctx context.Context, params provider.LookupParams) (string, error) {
	return f.phone, nil
}

func (f *fakeProvider) Config() config.ProviderConfig { return f.cfg }
func (f *fakeProvider) Stats() provider.Stats         { return provider.Stats{Provider: f.cfg.Name} }

func TestRegistry_OrdersByPriorityAndFiltersDisabled(t *testing.T) {
	providers := []provider.Provider{
		&fakeProvider{cfg: config.ProviderConfig{Name: "Nimbus", Priority: 3, Enabled: true}},
		&fakeProvider{cfg: config.ProviderConfig{Name: "Orion", Priority: 1, Enabled: true}},
		&fakeProvider{cfg: config.ProviderConfig{Name: "Disabled", Priority: 0, Enabled: false}},
		&fakeProvider{cfg: config.ProviderConfig{Name: "Astra", Priority: 2, Enabled: true}},
	}

	reg := provider.NewRegistry(providers)
	ordered := reg.Ordered()

	if len(ordered) != 3 {
		t.Fatalf("expected 3 enabled providers, got %d", len(ordered))
	}
	want := []string{"Orion", "Astra", "Nimbus"}
	for i, p := range ordered {
		if p.Config().Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], p.Config().Name)
		}
	}

	if _, ok := reg.ByName("Disabled"); ok {
		t.Error("expected disabled provider to be absent from registry")
	}
	if _, ok := reg.ByName("Nonexistent"); ok {
		t.Error("expected lookup of unknown provider to return false")
	}
	if p, ok := reg.ByName("Astra"); !ok || p.Config().Priority != 2 {
		t.Errorf("expected to find Astra at priority 2, got %+v, ok=%v", p, ok)
	}
}

func TestRegistry_ImmutableOrderedCopy(t *testing.T) {
	providers := []provider.Provider{
		&fakeProvider{cfg: config.ProviderConfig{Name: "Orion", Priority: 1, Enabled: true}},
	}
	reg := provider.NewRegistry(providers)

	first := reg.Ordered()
	first[0] = &fakeProvider{cfg: config.ProviderConfig{Name: "Mutated", Priority: 99, Enabled: true}}

	second := reg.Ordered()
	if second[0].Config().Name != "Orion" {
		t.Errorf("expected registry's internal order to be unaffected by caller mutation, got %s", second[0].Config().Name)
	}
}
