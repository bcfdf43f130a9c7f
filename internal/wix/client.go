// Package wix integrates Wix Stores as a catalog datastore. Products are
// queried one at a time by slug through the stores-reader API, then the
// cart item's SKU selects the variant to validate against.
package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foxy-webhooks/internal/model"
	"foxy-webhooks/internal/transport"
)

const baseURL = "https://www.wixapis.com"

// Product is a Wix store product with its variants.
type Product struct {
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// Variant is one purchasable variation of a product. Stock sits beside the
// variant data, not inside it.
type Variant struct {
	Variant VariantData `json:"variant"`
	Stock   Stock       `json:"stock"`
}

// VariantData carries the SKU and pricing of a variant.
type VariantData struct {
	SKU       string `json:"sku"`
	PriceData struct {
		Price           model.Number `json:"price"`
		DiscountedPrice model.Number `json:"discountedPrice"`
	} `json:"priceData"`
}

// Stock is a variant's inventory state. When TrackQuantity is false Wix
// only knows the boolean InStock flag.
type Stock struct {
	TrackQuantity bool         `json:"trackQuantity"`
	Quantity      model.Number `json:"quantity"`
	InStock       bool         `json:"inStock"`
}

// Client is the Wix stores-reader HTTP client. Authentication is an API
// key plus account and site ID headers.
type Client struct {
	httpClient *http.Client
	apiKey     string
	accountID  string
	siteID     string
	baseURL    string
}

// NewClient creates a Wix client with the given credentials.
func NewClient(apiKey, accountID, siteID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport.NewBrowserTransport(30 * time.Second),
		},
		apiKey:    apiKey,
		accountID: accountID,
		siteID:    siteID,
		baseURL:   baseURL,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
	c.httpClient.Transport = nil
}

// QueryProductBySlug fetches the product with the given slug, variants
// included. Returns the product and how many matched the slug.
func (c *Client) QueryProductBySlug(ctx context.Context, slug string) (*Product, int, error) {
	filter, err := json.Marshal(map[string]string{"slug": slug})
	if err != nil {
		return nil, 0, err
	}
	body, err := json.Marshal(map[string]interface{}{
		"includeVariants": true,
		"query": map[string]string{
			"filter": string(filter),
		},
	})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/stores-reader/v1/products/query", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("wix-account-id", c.accountID)
	req.Header.Set("wix-site-id", c.siteID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, model.NewUpstreamError("Wix", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, 0, model.NewRateLimitError("Wix")
	}
	if resp.StatusCode >= 400 {
		return nil, 0, model.NewUpstreamError("Wix",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var parsed struct {
		Products     []Product `json:"products"`
		TotalResults int       `json:"totalResults"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, 0, fmt.Errorf("parsing response: %w", err)
	}
	if len(parsed.Products) == 0 {
		return nil, parsed.TotalResults, nil
	}
	return &parsed.Products[0], parsed.TotalResults, nil
}
