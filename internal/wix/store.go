package wix

import (
	"context"
	"fmt"
	"log/slog"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/datastore"
	"foxy-webhooks/internal/model"
)

// ResolutionError reports an item that could not be located in Wix. This is
// a business outcome, not a system failure: the webhook answers 200 with
// ok=false and the details below.
type ResolutionError struct {
	Details string
}

func (e *ResolutionError) Error() string {
	return e.Details
}

// Store adapts the Wix client to the datastore interface. Wix identifies
// products by a slug item option and variants by SKU.
type Store struct {
	client *Client
	logger *slog.Logger
}

// NewStore creates a Wix datastore.
func NewStore(client *Client, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// SetBaseURL overrides the client's API base URL. Used by tests.
func (s *Store) SetBaseURL(u string) {
	s.client.SetBaseURL(u)
}

// Credentials reports whether all three Wix credentials are configured.
func (s *Store) Credentials() error {
	switch {
	case s.client.apiKey == "":
		return model.NewConfigError("FOXY_WIX_API_KEY")
	case s.client.accountID == "":
		return model.NewConfigError("FOXY_WIX_ACCOUNT_ID")
	case s.client.siteID == "":
		return model.NewConfigError("FOXY_WIX_SITE_ID")
	}
	return nil
}

// UpdateInventory is unsupported: Wix manages its own stock ledger.
func (s *Store) UpdateInventory(ctx context.Context, items []cart.CanonicalItem) error {
	return datastore.Unsupported("inventory update")
}

// FetchCanonicalItems resolves each cart item with one product query by
// slug, then a variant lookup by SKU. A missing slug option, product or
// variant is a ResolutionError the dispatcher turns into a rejection.
func (s *Store) FetchCanonicalItems(ctx context.Context, items []cart.Item) ([]cart.CanonicalItem, error) {
	canonical := make([]cart.CanonicalItem, 0, len(items))
	for _, item := range items {
		slug, ok := item.Option("slug")
		if !ok || slug == "" {
			return nil, &ResolutionError{
				Details: fmt.Sprintf("Cannot find slug in item options for item %s", item.Name),
			}
		}

		product, total, err := s.client.QueryProductBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if total != 1 || product == nil {
			return nil, &ResolutionError{
				Details: fmt.Sprintf("Cannot find product in Wix by slug %s", slug),
			}
		}

		variant := findVariant(product, item.Code.String())
		if variant == nil {
			return nil, &ResolutionError{
				Details: fmt.Sprintf("Cannot find variant by sku %s", item.Code),
			}
		}

		canonical = append(canonical, toCanonical(product, variant, item))
	}
	return canonical, nil
}

func findVariant(product *Product, sku string) *Variant {
	for i := range product.Variants {
		if product.Variants[i].Variant.SKU == sku {
			return &product.Variants[i]
		}
	}
	return nil
}

// toCanonical maps a Wix variant into the canonical shape. Variants that
// don't track quantity fall back to the in-stock flag: in stock means the
// inventory check does not apply, out of stock means zero available.
func toCanonical(product *Product, variant *Variant, item cart.Item) cart.CanonicalItem {
	canonical := cart.CanonicalItem{
		Name: product.Name,
		Code: item.Code.String(),
	}
	if canonical.Name == "" {
		canonical.Name = item.Name
	}
	if price, ok := variant.Variant.PriceData.DiscountedPrice.Float(); ok {
		canonical.Price = cart.Float(price)
	}
	if variant.Stock.TrackQuantity {
		if quantity, ok := variant.Stock.Quantity.Float(); ok {
			canonical.Inventory = cart.Float(quantity)
		}
	} else if !variant.Stock.InStock {
		canonical.Inventory = cart.Float(0)
	}
	return canonical
}
