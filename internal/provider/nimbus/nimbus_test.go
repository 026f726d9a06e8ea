package nimbus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lead-gateway/internal/config"
	"lead-gateway/internal/provider"
)

func testConfig(endpoint string) config.ProviderConfig {
	return config.ProviderConfig{
		Name:           "Nimbus",
		Priority:       3,
		CostPerRequest: 0.015,
		RateLimit:      2,
		TimeWindow:     time.Second,
		MaxConcurrent:  2,
		Enabled:        true,
		Timeout:        2 * time.Second,
		APIKey:         "000099998888",
		Endpoint:       endpoint,
	}
}

func TestProvider_Execute_BodyAuthAndNestedContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.API != "000099998888" {
			t.Errorf("expected api field in body, got %q", body.API)
		}
		if body.JobTitle != "Unknown" {
			t.Errorf("expected jobTitle carried through, got %q", body.JobTitle)
		}
		w.Write([]byte(`{"contact":{"phone":"+15559876543"}}`))
	}))
	defer srv.Close()

	p := New(testConfig(srv.URL), nil)
	defer p.Close()

	result, err := p.Execute(context.Background(), provider.LookupParams{FullName: "X", CompanyWebsite: "example.com", JobTitle: "Unknown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phone != "+15559876543" {
		t.Errorf("expected nested contact.phone extracted, got %q", result.Phone)
	}
}
