// Package orderdesk integrates the OrderDesk inventory API as a catalog
// datastore: batched lookups by product code and batched stock updates.
package orderdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foxy-webhooks/internal/model"
)

const baseURL = "https://app.orderdesk.me/api/v2"

// InventoryItem is an OrderDesk inventory record. Stock is OrderDesk's name
// for the available quantity.
type InventoryItem struct {
	ID           model.FlexString `json:"id"`
	Name         string           `json:"name"`
	Code         model.FlexString `json:"code"`
	Price        model.Number     `json:"price"`
	Stock        model.Number     `json:"stock"`
	UpdateSource string           `json:"update_source,omitempty"`
}

// BatchResponse is OrderDesk's reply to a batch inventory update.
type BatchResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client is the OrderDesk API HTTP client. Authentication is two header
// keys: the API key and the store ID.
type Client struct {
	httpClient *http.Client
	apiKey     string
	storeID    string
	baseURL    string
}

// NewClient creates an OrderDesk client with the given credentials.
func NewClient(apiKey, storeID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		storeID:    storeID,
		baseURL:    baseURL,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// FetchInventoryItems retrieves inventory records for the given codes in a
// single batched call. OrderDesk returns only the matching subset; codes
// with no record are simply absent.
func (c *Client) FetchInventoryItems(ctx context.Context, codes []string) ([]InventoryItem, error) {
	endpoint := fmt.Sprintf("%s/inventory-items?%s", c.baseURL, url.Values{
		"code": {strings.Join(codes, ",")},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		InventoryItems []InventoryItem `json:"inventory_items"`
	}
	if err := c.do(req, &parsed); err != nil {
		return nil, err
	}
	return parsed.InventoryItems, nil
}

// UpdateInventoryItems pushes new stock levels in one batched PUT.
func (c *Client) UpdateInventoryItems(ctx context.Context, items []InventoryItem) (*BatchResponse, error) {
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling inventory items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/batch-inventory-items", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var parsed BatchResponse
	if err := c.do(req, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) do(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ORDERDESK-API-KEY", c.apiKey)
	req.Header.Set("ORDERDESK-STORE-ID", c.storeID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("OrderDesk", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return model.NewRateLimitError("OrderDesk")
	}
	if resp.StatusCode >= 400 {
		return model.NewUpstreamError("OrderDesk",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
