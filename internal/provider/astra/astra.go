// Package astra implements the Astra Dialer phone-lookup variant: GET with
// apiKey and lookup fields all in the query string (§4.2, §6).
package astra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"

	"lead-gateway/internal/config"
	"lead-gateway/internal/observability"
	"lead-gateway/internal/provider"
)

type responseBody struct {
	PhoneNumber *string `json:"phoneNumber"`
}

type transportError struct{ err error }

func (e transportError) Error() string { return e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

// Provider is the Astra Dialer backend.
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
			return "", nil
		}
		return "", err
	}
	return phone, nil
}

func (p *Provider) attempt(ctx context.Context, params provider.LookupParams) (string, error) {
	u, err := url.Parse(p.Cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("astra: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", p.Cfg.APIKey)
	q.Set("fullName", params.FullName)
	q.Set("companyWebsite", params.CompanyWebsite)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("astra: build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", transportError{fmt.Errorf("astra: server error %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", nil
	}

	var out responseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("astra: decode response: %w", err)
	}
	if out.PhoneNumber == nil {
		return "", nil
	}
	return *out.PhoneNumber, nil
}
