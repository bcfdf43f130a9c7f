// Package cart holds the item types shared by all webhook handlers and the
// validation rules applied to them before a payment is approved.
package cart

import (
	"strings"

	"foxy-webhooks/internal/model"
)

// Item is a single cart line item as embedded in a Foxy webhook payload.
// Numeric fields arrive as strings from Foxy and as numbers from replayed
// payloads, so they decode through model.Number.
type Item struct {
	Name                  string           `json:"name"`
	Price                 model.Number     `json:"price"`
	Quantity              model.Number     `json:"quantity"`
	Code                  model.FlexString `json:"code"`
	ParentCode            model.FlexString `json:"parent_code"`
	Weight                model.Number     `json:"weight"`
	Width                 model.Number     `json:"width"`
	Height                model.Number     `json:"height"`
	SubscriptionFrequency string           `json:"subscription_frequency"`
	SubscriptionStartDate string           `json:"subscription_start_date"`

	Embedded struct {
		Options []Option `json:"fx:item_options"`
	} `json:"_embedded"`
}

// Option is a name/value pair attached to a cart item.
type Option struct {
	Name  string           `json:"name"`
	Value model.FlexString `json:"value"`
}

// Option returns the value of the named item option, matching the name
// case-insensitively and ignoring surrounding whitespace.
func (i Item) Option(name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, o := range i.Embedded.Options {
		if strings.ToLower(strings.TrimSpace(o.Name)) == want {
			return o.Value.String(), true
		}
	}
	return "", false
}

// CollectionID returns the catalog collection for this item: the
// collection_id item option when present, otherwise the configured default.
func (i Item) CollectionID(defaultID string) string {
	if id, ok := i.Option("collection_id"); ok && id != "" {
		return id
	}
	return defaultID
}

// CanonicalItem is the provider-independent shape of a catalog record.
// Price and Inventory are nil when the provider does not track them;
// checks that depend on a nil field are skipped, never failed.
type CanonicalItem struct {
	Name       string
	Code       string
	ParentCode string
	Price      *float64
	Inventory  *float64

	// ProviderID is the provider's own record identifier, kept so
	// inventory updates can be pushed back after a transaction.
	ProviderID string
}

// Pair joins a cart item with its catalog record. Canonical is nil when no
// record matched the item's code.
type Pair struct {
	Item      Item
	Canonical *CanonicalItem
}

// PairByCode joins cart items with canonical items by product code.
// Left-outer join: every cart item appears in the result exactly once, with
// a nil Canonical when nothing matched. Matching is an exact string
// comparison after coercing both codes to strings.
func PairByCode(items []Item, canonical []CanonicalItem) []Pair {
	byCode := make(map[string]*CanonicalItem, len(canonical))
	for idx := range canonical {
		byCode[canonical[idx].Code] = &canonical[idx]
	}
	pairs := make([]Pair, 0, len(items))
	for _, item := range items {
		pairs = append(pairs, Pair{Item: item, Canonical: byCode[item.Code.String()]})
	}
	return pairs
}

// Float returns a pointer to v. Convenience for building canonical items.
func Float(v float64) *float64 {
	return &v
}
