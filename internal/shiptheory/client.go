// Package shiptheory forwards completed transactions to Shiptheory as
// shipments. Authentication is a short-lived bearer token obtained from
// email/password credentials.
package shiptheory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foxy-webhooks/internal/model"
)

const baseURL = "https://api.shiptheory.com/v1"

// Client is the Shiptheory API HTTP client. It holds no per-delivery state:
// tokens are short-lived, so each webhook delivery authenticates for itself
// and carries its token through the call chain, keeping the shared client
// safe under concurrent deliveries.
type Client struct {
	httpClient *http.Client
	email      string
	password   string
	baseURL    string
}

// NewClient creates a Shiptheory client with the given login credentials.
func NewClient(email, password string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		email:      email,
		password:   password,
		baseURL:    baseURL,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Credentials reports whether the Shiptheory login is configured.
func (c *Client) Credentials() error {
	if c.email == "" {
		return model.NewConfigError("FOXY_SHIPTHEORY_EMAIL")
	}
	if c.password == "" {
		return model.NewConfigError("FOXY_SHIPTHEORY_PASSWORD")
	}
	return nil
}

// Authenticate obtains a fresh bearer token for one delivery.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := c.do(req, "", &parsed); err != nil {
		return "", err
	}
	if !parsed.Success || parsed.Data.Token == "" {
		return "", errors.New("could not authenticate against Shiptheory")
	}
	return parsed.Data.Token, nil
}

// CreateShipment posts a shipment under the given bearer token.
func (c *Client) CreateShipment(ctx context.Context, token string, shipment *Shipment) (*ShipmentResponse, error) {
	if token == "" {
		return nil, errors.New("must be authenticated to send a shipment")
	}
	body, err := json.Marshal(shipment)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shipments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var parsed ShipmentResponse
	if err := c.do(req, token, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) do(req *http.Request, token string, result interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("Shiptheory", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return model.NewRateLimitError("Shiptheory")
	}
	if resp.StatusCode >= 400 {
		return model.NewUpstreamError("Shiptheory",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
