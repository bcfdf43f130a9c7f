package webflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/datastore"
	"foxy-webhooks/internal/fields"
	"foxy-webhooks/internal/model"
)

// maxScan bounds the linear search: past this many items in one collection
// the item is reported as not found rather than paging forever through a
// pathological collection.
const maxScan = 500

// Resolver locates cart items in Webflow collections and maps them to
// canonical items. Implements the datastore interface; Webflow tracks no
// writable stock so inventory updates are unsupported.
type Resolver struct {
	client            *Client
	overrides         fields.Overrides
	defaultCollection string
	pageLimit         int
	logger            *slog.Logger
}

// NewResolver creates a Webflow resolver. pageLimit is the collection page
// size; defaultCollection is used for items without a collection_id option.
func NewResolver(client *Client, overrides fields.Overrides, defaultCollection string, pageLimit int, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:            client,
		overrides:         overrides,
		defaultCollection: defaultCollection,
		pageLimit:         pageLimit,
		logger:            logger,
	}
}

// SetBaseURL overrides the client's API base URL. Used by tests.
func (r *Resolver) SetBaseURL(u string) {
	r.client.SetBaseURL(u)
}

// Credentials reports whether the Webflow token is configured.
func (r *Resolver) Credentials() error {
	if r.client.token == "" {
		return model.NewConfigError("FOXY_WEBFLOW_TOKEN")
	}
	return nil
}

// UpdateInventory is unsupported: Webflow collections are content, not a
// writable inventory ledger.
func (r *Resolver) UpdateInventory(ctx context.Context, items []cart.CanonicalItem) error {
	return datastore.Unsupported("inventory update")
}

// FetchCanonicalItems resolves each cart item by scanning its collection.
// Resolution is sequential; the cache is scoped to this call, so items
// sharing a collection reuse already-fetched pages instead of refetching.
func (r *Resolver) FetchCanonicalItems(ctx context.Context, items []cart.Item) ([]cart.CanonicalItem, error) {
	cache := newRequestCache()
	canonical := make([]cart.CanonicalItem, 0, len(items))
	for _, item := range items {
		found, err := r.resolveItem(ctx, cache, item)
		if err != nil {
			return nil, err
		}
		canonical = append(canonical, r.toCanonical(found, item))
	}
	return canonical, nil
}

// resolveItem finds the collection item matching a cart item's code. It
// searches the cache first, then fetches further pages in a bounded loop
// until the item appears, the collection is exhausted, or the scan cap is
// reached.
func (r *Resolver) resolveItem(ctx context.Context, cache *requestCache, item cart.Item) (*Item, error) {
	collectionID := item.CollectionID(r.defaultCollection)
	code := strings.TrimSpace(item.Code.String())

	for {
		if found := cache.find(collectionID, code, r.overrides); found != nil {
			return found, nil
		}
		offset := cache.size(collectionID)
		if cache.exhausted(collectionID) {
			return nil, model.NewInternalError(fmt.Errorf("item not found: %s", code))
		}
		if offset > maxScan {
			r.logger.Warn("giving up linear search",
				slog.String("collection", collectionID),
				slog.String("code", code),
				slog.Int("scanned", offset),
			)
			return nil, model.NewInternalError(fmt.Errorf("item not found: %s", code))
		}
		if offset > 0 {
			r.logger.Info("item not in fetched pages, fetching next",
				slog.String("code", code),
				slog.Int("offset", offset),
			)
		}

		page, err := r.client.ListItems(ctx, collectionID, r.pageLimit, offset)
		if err != nil {
			return nil, err
		}
		cache.add(collectionID, page.Items)
		if page.Pagination.Total <= offset+len(page.Items) || len(page.Items) == 0 {
			cache.markExhausted(collectionID)
		}

		// A page where no item carries the code field at all means the
		// collection itself is unusable for validation, not that this
		// one item is missing.
		if len(page.Items) > 0 && !r.codeFieldPresent(page.Items) && !cache.sawCodeField(collectionID) {
			return nil, model.NewCatalogError(fmt.Sprintf(
				"could not find the code field (%s) in Webflow; this field must exist and not be empty for all items in the collection",
				r.overrides.Key(fields.FieldCode)))
		}
		if r.codeFieldPresent(page.Items) {
			cache.markCodeField(collectionID)
		}
	}
}

// codeFieldPresent reports whether any item in the page carries the
// configured code field.
func (r *Resolver) codeFieldPresent(items []Item) bool {
	for _, it := range items {
		if _, ok := fields.LookupLogical(it.FieldData, fields.FieldCode, r.overrides); ok {
			return true
		}
	}
	return false
}

// toCanonical maps a collection item into the canonical shape. Missing
// price or inventory fields yield nil values, which the validator treats
// as checks that do not apply.
func (r *Resolver) toCanonical(it *Item, cartItem cart.Item) cart.CanonicalItem {
	canonical := cart.CanonicalItem{
		Code:       strings.TrimSpace(cartItem.Code.String()),
		ProviderID: it.ID,
	}
	if name, ok := it.FieldData["name"].(string); ok {
		canonical.Name = name
	}
	if raw, ok := fields.LookupLogical(it.FieldData, fields.FieldPrice, r.overrides); ok {
		if price, numeric := model.Coerce(raw); numeric {
			canonical.Price = cart.Float(price)
		}
	}
	if r.overrides.InventoryDisabled() {
		return canonical
	}
	raw, ok := fields.LookupLogical(it.FieldData, fields.FieldInventory, r.overrides)
	if !ok {
		r.logger.Warn("inventory field does not exist in this collection, skipping inventory check",
			slog.String("field", r.overrides.Key(fields.FieldInventory)),
			slog.String("collection_item", it.ID),
		)
		return canonical
	}
	if inventory, numeric := model.Coerce(raw); numeric {
		canonical.Inventory = cart.Float(inventory)
	} else {
		r.logger.Warn("inventory value is not a number, skipping inventory check",
			slog.String("code", canonical.Code))
	}
	return canonical
}

// requestCache accumulates the collection pages fetched while resolving a
// single webhook. It is created per call and discarded with it; nothing is
// shared across invocations.
type requestCache struct {
	items   map[string][]Item
	done    map[string]bool
	hasCode map[string]bool
}

func newRequestCache() *requestCache {
	return &requestCache{
		items:   make(map[string][]Item),
		done:    make(map[string]bool),
		hasCode: make(map[string]bool),
	}
}

func (c *requestCache) add(collection string, items []Item) {
	c.items[collection] = append(c.items[collection], items...)
}

func (c *requestCache) size(collection string) int {
	return len(c.items[collection])
}

func (c *requestCache) exhausted(collection string) bool {
	return c.done[collection]
}

func (c *requestCache) markExhausted(collection string) {
	c.done[collection] = true
}

func (c *requestCache) sawCodeField(collection string) bool {
	return c.hasCode[collection]
}

func (c *requestCache) markCodeField(collection string) {
	c.hasCode[collection] = true
}

// find scans cached items for one whose code field matches the cart code.
// Both sides compare as trimmed strings.
func (c *requestCache) find(collection, code string, overrides fields.Overrides) *Item {
	if code == "" {
		return nil
	}
	cached := c.items[collection]
	for i := range cached {
		raw, ok := fields.LookupLogical(cached[i].FieldData, fields.FieldCode, overrides)
		if !ok {
			continue
		}
		if strings.TrimSpace(fmt.Sprintf("%v", raw)) == code {
			return &cached[i]
		}
	}
	return nil
}
