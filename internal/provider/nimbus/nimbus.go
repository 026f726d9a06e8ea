// Package nimbus implements the Nimbus Lookup phone-lookup variant: POST
// with the API key as a body field and the phone nested under contact
// (§4.2, §6).
package nimbus

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
	API            string `json:"api"`
	FullName       string `json:"fullName"`
	CompanyWebsite string `json:"companyWebsite"`
	JobTitle       string `json:"jobTitle"`
}

type contact struct {
	Phone *string `json:"phone"`
}

type responseBody struct {
	Contact contact `json:"contact"`
}

type transportError struct{ err error }

func (e transportError) Error() string { return e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

// Provider is the Nimbus Lookup backend.
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
	body, err := json.Marshal(requestBody{
		API:            p.Cfg.APIKey,
		FullName:       params.FullName,
		CompanyWebsite: params.CompanyWebsite,
		JobTitle:       params.JobTitle,
	})
	if err != nil {
		return "", fmt.Errorf("nimbus: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("nimbus: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", transportError{fmt.Errorf("nimbus: server error %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", nil
	}

	var out responseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("nimbus: decode response: %w", err)
	}
	if out.Contact.Phone == nil {
		return "", nil
	}
	return *out.Contact.Phone, nil
}
