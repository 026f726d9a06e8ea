// Package orion implements the Orion Connect phone-lookup variant: POST with
// an x-auth-me header (§4.2, §6).
package orion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"lead-gateway/internal/config"
	"lead-gateway/internal/observability"
	"lead-gateway/internal/provider"
)

type requestBody struct {
	FullName       string `json:"fullName"`
	CompanyWebsite string `json:"companyWebsite"`
}

type responseBody struct {
	Phone *string `json:"phone"`
}

// transportError marks a failure eligible for the shared retry policy
// (transport errors and 5xx); a 4xx terminates the attempt immediately.
type transportError struct{ err error }

func (e transportError) Error() string { return e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

// Provider is the Orion Connect backend.
type Provider struct {
	provider.Base
	client *http.Client
}

func New(cfg config.ProviderConfig, metrics *observability.Metrics) *Provider {
	return &Provider{
		Base:   provider.NewBase(cfg, metrics),
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Execute(ctx context.Context, params provider.LookupParams) (provider.PhoneResult, error) {
	return provider.Execute(ctx, p.Base, p.Lookup, params)
}

// Lookup performs the Orion wire call with the shared retry policy: up to 3
// attempts, backoff 2^attempt seconds, retry only on transport/5xx, no
// retry on 4xx.
func (p *Provider) Lookup(ctx context.Context, params provider.LookupParams) (string, error) {
	phone, err := retry.DoWithData(
		func() (string, error) {
			return p.attempt(ctx, params)
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			_, retriable := err.(transportError)
			return retriable
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if _, retriable := err.(transportError); retriable {
			// All attempts exhausted on transport/5xx failures: §4.2 says
			// return phone = none rather than raising.
			return "", nil
		}
		return "", err
	}
	return phone, nil
}

func (p *Provider) attempt(ctx context.Context, params provider.LookupParams) (string, error) {
	body, err := json.Marshal(requestBody{
		FullName:       params.FullName,
		CompanyWebsite: params.CompanyWebsite,
	})
	if err != nil {
		return "", fmt.Errorf("orion: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("orion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-auth-me", p.Cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", transportError{fmt.Errorf("orion: server error %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", nil
	}

	var out responseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("orion: decode response: %w", err)
	}
	if out.Phone == nil {
		return "", nil
	}
	return *out.Phone, nil
}
