package wix

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeItems(t *testing.T, raw string) []cart.Item {
	t.Helper()
	var items []cart.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

const cartItemWithSlug = `[{
	"name": "Blue Widget",
	"code": "SKU-1",
	"price": "10.00",
	"quantity": 1,
	"_embedded": {"fx:item_options": [{"name": "slug", "value": "blue-widget"}]}
}]`

// productServer answers product queries with a single canned product.
func productServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores-reader/v1/products/query", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "account", r.Header.Get("wix-account-id"))
		assert.Equal(t, "site", r.Header.Get("wix-site-id"))

		var query struct {
			IncludeVariants bool `json:"includeVariants"`
			Query           struct {
				Filter string `json:"filter"`
			} `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		assert.True(t, query.IncludeVariants)
		assert.JSONEq(t, `{"slug": "blue-widget"}`, query.Query.Filter)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestStore(serverURL string) *Store {
	store := NewStore(NewClient("api-key", "account", "site"), testLogger())
	store.SetBaseURL(serverURL)
	return store
}

func TestFetchCanonicalItems(t *testing.T) {
	server := productServer(t, `{
		"totalResults": 1,
		"products": [{
			"name": "Blue Widget",
			"variants": [{
				"variant": {"sku": "SKU-1", "priceData": {"price": 12, "discountedPrice": 10}},
				"stock": {"trackQuantity": true, "quantity": 4, "inStock": true}
			}]
		}]
	}`)
	store := newTestStore(server.URL)

	canonical, err := store.FetchCanonicalItems(context.Background(), decodeItems(t, cartItemWithSlug))
	require.NoError(t, err)
	require.Len(t, canonical, 1)

	assert.Equal(t, "Blue Widget", canonical[0].Name)
	assert.Equal(t, "SKU-1", canonical[0].Code)
	// Discounted price is what the customer actually pays.
	require.NotNil(t, canonical[0].Price)
	assert.Equal(t, 10.0, *canonical[0].Price)
	require.NotNil(t, canonical[0].Inventory)
	assert.Equal(t, 4.0, *canonical[0].Inventory)
}

func TestUntrackedStockUsesInStockFlag(t *testing.T) {
	inStock := `{
		"totalResults": 1,
		"products": [{"name": "W", "variants": [{
			"variant": {"sku": "SKU-1", "priceData": {"discountedPrice": 10}},
			"stock": {"trackQuantity": false, "inStock": true}
		}]}]
	}`
	server := productServer(t, inStock)
	canonical, err := newTestStore(server.URL).FetchCanonicalItems(
		context.Background(), decodeItems(t, cartItemWithSlug))
	require.NoError(t, err)
	assert.Nil(t, canonical[0].Inventory, "in-stock untracked items have no inventory limit")

	outOfStock := `{
		"totalResults": 1,
		"products": [{"name": "W", "variants": [{
			"variant": {"sku": "SKU-1", "priceData": {"discountedPrice": 10}},
			"stock": {"trackQuantity": false, "inStock": false}
		}]}]
	}`
	server2 := productServer(t, outOfStock)
	canonical, err = newTestStore(server2.URL).FetchCanonicalItems(
		context.Background(), decodeItems(t, cartItemWithSlug))
	require.NoError(t, err)
	require.NotNil(t, canonical[0].Inventory)
	assert.Equal(t, 0.0, *canonical[0].Inventory, "out-of-stock untracked items have zero inventory")
}

func TestMissingSlugRejects(t *testing.T) {
	store := NewStore(NewClient("api-key", "account", "site"), testLogger())

	_, err := store.FetchCanonicalItems(context.Background(),
		decodeItems(t, `[{"name": "No Slug", "code": "X"}]`))
	var resolution *ResolutionError
	require.True(t, errors.As(err, &resolution))
	assert.Equal(t, "Cannot find slug in item options for item No Slug", resolution.Details)
}

func TestProductNotFoundRejects(t *testing.T) {
	server := productServer(t, `{"totalResults": 0, "products": []}`)
	store := newTestStore(server.URL)

	_, err := store.FetchCanonicalItems(context.Background(), decodeItems(t, cartItemWithSlug))
	var resolution *ResolutionError
	require.True(t, errors.As(err, &resolution))
	assert.Equal(t, "Cannot find product in Wix by slug blue-widget", resolution.Details)
}

func TestVariantNotFoundRejects(t *testing.T) {
	server := productServer(t, `{
		"totalResults": 1,
		"products": [{"name": "W", "variants": [{
			"variant": {"sku": "OTHER-SKU", "priceData": {"discountedPrice": 10}},
			"stock": {"trackQuantity": true, "quantity": 4}
		}]}]
	}`)
	store := newTestStore(server.URL)

	_, err := store.FetchCanonicalItems(context.Background(), decodeItems(t, cartItemWithSlug))
	var resolution *ResolutionError
	require.True(t, errors.As(err, &resolution))
	assert.Equal(t, "Cannot find variant by sku SKU-1", resolution.Details)
}

func TestCredentials(t *testing.T) {
	assert.NoError(t, NewStore(NewClient("k", "a", "s"), testLogger()).Credentials())
	assert.ErrorIs(t, NewStore(NewClient("", "a", "s"), testLogger()).Credentials(), model.ErrConfigMissing)
	assert.ErrorIs(t, NewStore(NewClient("k", "", "s"), testLogger()).Credentials(), model.ErrConfigMissing)
	assert.ErrorIs(t, NewStore(NewClient("k", "a", ""), testLogger()).Credentials(), model.ErrConfigMissing)
}

func TestUpdateInventoryUnsupported(t *testing.T) {
	store := NewStore(NewClient("k", "a", "s"), testLogger())
	assert.ErrorIs(t, store.UpdateInventory(context.Background(), nil), model.ErrUnsupported)
}
