package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayClient talks to the external payment authorization service over HTTP.
// The protocol is a thin JSON request/response: the engine only cares about
// approved vs declined. All calls run through a circuit breaker so a dead
// gateway fast-fails card tenders instead of stalling checkouts.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

func NewGatewayClient(baseURL string, breaker *CircuitBreaker) *GatewayClient {
	return &GatewayClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    breaker,
	}
}

type authorizeRequest struct {
	Method    string `json:"method"`
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

type authorizeResponse struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

// Authorize posts an authorization request for an electronic tender.
// A nil return means approved; anything else declines the tender.
func (c *GatewayClient) Authorize(ctx context.Context, method string, amount decimal.Decimal, reference string) error {
	return c.breaker.Execute(func() error {
		return c.authorize(ctx, method, amount, reference)
	})
}

func (c *GatewayClient) authorize(ctx context.Context, method string, amount decimal.Decimal, reference string) error {
	body, err := json.Marshal(authorizeRequest{
		Method:    method,
		Amount:    amount.StringFixed(2),
		Reference: reference,
	})
	if err != nil {
		return fmt.Errorf("gateway: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authorize", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway: status %d: %s", resp.StatusCode, string(raw))
	}

	var out authorizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	if !out.Approved {
		if out.Message == "" {
			out.Message = "authorization declined"
		}
		return fmt.Errorf("gateway: %s", out.Message)
	}
	return nil
}

// BreakerState exposes the breaker state for health reporting.
func (c *GatewayClient) BreakerState() CBState {
	return c.breaker.State()
}

// OfflineAuthorizer approves every electronic tender locally. Used when no
// gateway URL is configured (standalone stores, development).
type OfflineAuthorizer struct{}

func (OfflineAuthorizer) Authorize(_ context.Context, _ string, _ decimal.Decimal, _ string) error {
	return nil
}
