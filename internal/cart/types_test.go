package cart

import (
	"encoding/json"
	"testing"
)

func TestItemOption(t *testing.T) {
	item := decodeItem(t, `{
		"name": "widget",
		"_embedded": {"fx:item_options": [
			{"name": " Slug ", "value": "blue-widget"},
			{"name": "collection_id", "value": 42}
		]}
	}`)

	if got, ok := item.Option("slug"); !ok || got != "blue-widget" {
		t.Errorf("Option(slug) = %q, %v", got, ok)
	}
	if got, ok := item.Option("SLUG"); !ok || got != "blue-widget" {
		t.Errorf("Option(SLUG) = %q, %v", got, ok)
	}
	if got, ok := item.Option("collection_id"); !ok || got != "42" {
		t.Errorf("Option(collection_id) = %q, %v", got, ok)
	}
	if _, ok := item.Option("missing"); ok {
		t.Error("Option(missing) should not be found")
	}
}

func TestCollectionID(t *testing.T) {
	withOption := decodeItem(t, `{"_embedded": {"fx:item_options": [
		{"name": "collection_id", "value": "from-option"}
	]}}`)
	if got := withOption.CollectionID("fallback"); got != "from-option" {
		t.Errorf("CollectionID = %q, want from-option", got)
	}

	var plain Item
	if got := plain.CollectionID("fallback"); got != "fallback" {
		t.Errorf("CollectionID = %q, want fallback", got)
	}
}

func TestPairByCode(t *testing.T) {
	var items []Item
	raw := `[
		{"name": "first", "code": "a"},
		{"name": "second", "code": 123},
		{"name": "unmatched", "code": "z"}
	]`
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatal(err)
	}
	canonical := []CanonicalItem{
		{Code: "a", Name: "First"},
		{Code: "123", Name: "Second"},
		{Code: "extra", Name: "Never bought"},
	}

	pairs := PairByCode(items, canonical)
	if len(pairs) != 3 {
		t.Fatalf("len(pairs) = %d, want 3", len(pairs))
	}
	if pairs[0].Canonical == nil || pairs[0].Canonical.Name != "First" {
		t.Errorf("pairs[0].Canonical = %+v", pairs[0].Canonical)
	}
	// Numeric cart code pairs with its string form.
	if pairs[1].Canonical == nil || pairs[1].Canonical.Name != "Second" {
		t.Errorf("pairs[1].Canonical = %+v", pairs[1].Canonical)
	}
	if pairs[2].Canonical != nil {
		t.Errorf("pairs[2].Canonical = %+v, want nil", pairs[2].Canonical)
	}
}
