// Package fields resolves logical field names (code, price, inventory)
// against catalog records whose actual field names are operator-configured,
// inconsistently cased, or suffixed by the catalog system.
package fields

import (
	"regexp"
	"sort"
	"strings"
)

// Logical field names understood by the resolvers.
const (
	FieldCode      = "code"
	FieldPrice     = "price"
	FieldInventory = "inventory"
)

// Overrides maps a logical field name to the operator-configured field name
// in the catalog. Missing entries fall back to the logical name itself.
type Overrides map[string]string

// Key returns the catalog field name to use for a logical field.
func (o Overrides) Key(logical string) string {
	if o != nil {
		if key, ok := o[logical]; ok && key != "" {
			return key
		}
	}
	return logical
}

// InventoryDisabled reports whether the configured inventory field name is
// the sentinel that turns inventory checking off entirely.
func (o Overrides) InventoryDisabled() bool {
	key := strings.ToLower(o.Key(FieldInventory))
	return key == "null" || key == "false"
}

// Lookup finds the value of a field in a record, matching the key
// case-insensitively with surrounding whitespace ignored. When no exact
// match exists it falls back to numbered variants of the key ("price-2"
// for "price"), choosing the lowest by lexicographic order — catalog
// systems append numeric suffixes to de-duplicate field names.
func Lookup(record map[string]interface{}, key string) (interface{}, bool) {
	want := strings.ToLower(strings.TrimSpace(key))

	for k, v := range record {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return v, true
		}
	}

	numbered := regexp.MustCompile("^" + regexp.QuoteMeta(want) + `-\d+$`)
	var matches []string
	for k := range record {
		if numbered.MatchString(strings.ToLower(strings.TrimSpace(k))) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	sort.Strings(matches)
	return record[matches[0]], true
}

// LookupLogical resolves a logical field through the overrides and then
// looks it up in the record.
func LookupLogical(record map[string]interface{}, logical string, overrides Overrides) (interface{}, bool) {
	return Lookup(record, overrides.Key(logical))
}
