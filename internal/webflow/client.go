// Package webflow integrates a Webflow CMS collection as a catalog
// datastore. Webflow has no documented filtered query on arbitrary fields,
// so lookups are a linear search across collection pages, bounded by a hard
// cap and amortized by a request-scoped cache.
package webflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foxy-webhooks/internal/model"
	"foxy-webhooks/internal/transport"
)

const baseURL = "https://api.webflow.com/v2"

// Item is a single CMS collection item. Custom fields live in FieldData
// under operator-chosen names, resolved through the fields package.
type Item struct {
	ID        string                 `json:"id"`
	FieldData map[string]interface{} `json:"fieldData"`
}

// ItemList is one page of a collection listing.
type ItemList struct {
	Items      []Item `json:"items"`
	Pagination struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	} `json:"pagination"`
}

// Client is the Webflow CMS API HTTP client, authenticated by bearer token.
// Webflow fronts its API with a fingerprinting CDN, so outbound calls use
// the browser transport.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// NewClient creates a Webflow client with the given site token.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport.NewBrowserTransport(30 * time.Second),
		},
		token:   token,
		baseURL: baseURL,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
	c.httpClient.Transport = nil
}

// ListItems fetches one page of live items from a collection, sorted by
// name ascending so pagination is stable across calls.
func (c *Client) ListItems(ctx context.Context, collectionID string, limit, offset int) (*ItemList, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/items/live?%s", c.baseURL, url.PathEscape(collectionID), url.Values{
		"limit":     {strconv.Itoa(limit)},
		"offset":    {strconv.Itoa(offset)},
		"sortBy":    {"name"},
		"sortOrder": {"asc"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError("Webflow", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, model.NewRateLimitError("Webflow")
	}
	if resp.StatusCode >= 400 {
		return nil, model.NewUpstreamError("Webflow",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var list ItemList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &list, nil
}
