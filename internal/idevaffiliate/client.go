// Package idevaffiliate forwards completed transactions to idevAffiliate.
// Each cart item whose code carries a -a<digits> suffix is credited to that
// affiliate with one form-encoded POST.
package idevaffiliate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/model"
)

// affiliateSuffix extracts the affiliate id appended to product codes,
// e.g. "WIDGET-a42" credits affiliate 42.
var affiliateSuffix = regexp.MustCompile(`(?i)-a(\d+)$`)

// Client posts sale records to an idevAffiliate endpoint.
type Client struct {
	httpClient *http.Client
	apiURL     string
	logger     *slog.Logger
}

// NewClient creates an idevAffiliate client for the given endpoint.
func NewClient(apiURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     apiURL,
		logger:     logger,
	}
}

// Credentials reports whether the endpoint URL is configured.
func (c *Client) Credentials() error {
	if c.apiURL == "" {
		return model.NewConfigError("FOXY_IDEV_API_URL")
	}
	return nil
}

// AffiliateID parses the affiliate id from a product code suffix.
func AffiliateID(code string) (string, bool) {
	m := affiliateSuffix.FindStringSubmatch(code)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ProcessTransaction pushes every item of the transaction. Items missing a
// name, code or price are skipped rather than failing the batch.
func (c *Client) ProcessTransaction(ctx context.Context, tx *foxy.Transaction) error {
	for _, item := range tx.Embedded.Items {
		if err := c.PushItem(ctx, item, tx.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// PushItem records one item sale against its affiliate. Returns nil
// without posting when the item is not creditable.
func (c *Client) PushItem(ctx context.Context, item cart.Item, orderNumber string) error {
	if item.Name == "" || item.Code.String() == "" || item.Price.IsZero() {
		return nil
	}
	affiliateID, ok := AffiliateID(item.Code.String())
	if !ok {
		c.logger.Info("item has no affiliate suffix, skipping",
			slog.String("code", item.Code.String()))
		return nil
	}

	form := url.Values{
		"affiliate_id":  {affiliateID},
		"idev_saleamt":  {item.Price.String()},
		"idev_ordernum": {orderNumber},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("idevAffiliate", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return model.NewUpstreamError("idevAffiliate",
			fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

// SetBaseURL overrides the endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.apiURL = u
}
