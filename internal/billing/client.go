// Package billing queries the subscription provider. The alert engine asks
// it fresh every cycle; local subscription flags are never trusted.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"salvage_search/internal/config"
	"salvage_search/internal/fetch"
)

type Client struct {
	retrier *fetch.Retrier
	baseURL string
	apiKey  string
}

func NewClient(cfg config.BillingConfig, logger *slog.Logger) *Client {
	return &Client{
		retrier: fetch.NewRetrier(
			&http.Client{Timeout: cfg.Timeout},
			cfg.Retry,
			logger.With("component", "billing"),
		),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

type subscriptionsResponse struct {
	Data []subscription `json:"data"`
}

type subscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HasActiveSubscription asks the provider whether the customer currently
// holds any active subscription.
func (c *Client) HasActiveSubscription(ctx context.Context, customerID string) (bool, error) {
	if customerID == "" {
		return false, nil
	}

	url := fmt.Sprintf("%s/v1/customers/%s/subscriptions?status=active", c.baseURL, customerID)

	resp, err := c.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return false, fmt.Errorf("query subscriptions: %w", err)
	}
	defer resp.Body.Close()

	var parsed subscriptionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode subscriptions: %w", err)
	}

	for _, sub := range parsed.Data {
		if sub.Status == "active" {
			return true, nil
		}
	}
	return false, nil
}
