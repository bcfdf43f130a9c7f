// Package lune places carbon-offset orders with Lune for completed
// transactions. The checkout stores the Lune estimate id as a transaction
// attribute keyed by the shipping service that produced it.
package lune

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/model"
)

const baseURL = "https://api.lune.co/v1"

// Client is the Lune API HTTP client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Lune client.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Credentials reports whether the Lune API key is configured.
func (c *Client) Credentials() error {
	if c.apiKey == "" {
		return model.NewConfigError("FOXY_LUNE_API_KEY")
	}
	return nil
}

// EstimateID finds the offset estimate recorded for the transaction's
// shipping service. Transactions placed without an offset option carry no
// such attribute.
func EstimateID(tx *foxy.Transaction) (string, bool) {
	if len(tx.Embedded.Shipments) == 0 {
		return "", false
	}
	serviceID := tx.Embedded.Shipments[0].ShippingServiceID.String()
	if serviceID == "" {
		return "", false
	}
	return tx.Attribute("rate_id_" + serviceID)
}

// OrderResponse is Lune's reply to an order placement.
type OrderResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PlaceOrder converts the estimate into a carbon-offset order, tagging it
// with the customer email and transaction id.
func (c *Client) PlaceOrder(ctx context.Context, estimateID string, tx *foxy.Transaction) (*OrderResponse, error) {
	payload := map[string]interface{}{
		"estimate_id": estimateID,
		"metadata": map[string]string{
			"customer_email": tx.CustomerEmail,
			"transaction_id": tx.ID.String(),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/orders/by-estimate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError("Lune", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, model.NewRateLimitError("Lune")
	}
	if resp.StatusCode >= 500 {
		return nil, model.NewUpstreamError("Lune",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var parsed OrderResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}
	}
	if resp.StatusCode >= 400 && parsed.Error == nil {
		parsed.Error = &struct {
			Message string `json:"message"`
		}{Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return &parsed, nil
}
