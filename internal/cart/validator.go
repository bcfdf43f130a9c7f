package cart

import (
	"log/slog"
	"strings"
	"time"
)

// SkipAllSentinel disables a whole class of checks when set as the value of
// a skip-list setting. The same sentinel applies to price validation,
// inventory validation and inventory updates.
const SkipAllSentinel = "__ALL__"

// SkipList is an immutable set of product codes excluded from a check,
// with an optional all-codes flag. Built once at startup from
// configuration and shared read-only across requests.
type SkipList struct {
	All   bool
	codes map[string]struct{}
}

// NewSkipList parses a comma-separated list of codes. The literal
// SkipAllSentinel disables the check for every code.
func NewSkipList(spec string) SkipList {
	if strings.TrimSpace(spec) == SkipAllSentinel {
		return SkipList{All: true}
	}
	codes := make(map[string]struct{})
	for _, code := range strings.Split(spec, ",") {
		code = strings.TrimSpace(code)
		if code != "" {
			codes[code] = struct{}{}
		}
	}
	return SkipList{codes: codes}
}

// Skip reports whether checks for the given code should be skipped.
func (s SkipList) Skip(code string) bool {
	if s.All {
		return true
	}
	_, ok := s.codes[code]
	return ok
}

// Result aggregates the mismatches found while validating a cart.
type Result struct {
	PriceMismatches     []Pair
	InventoryShortfalls []Pair
}

// OK reports whether the cart passed every check.
func (r Result) OK() bool {
	return len(r.PriceMismatches) == 0 && len(r.InventoryShortfalls) == 0
}

// Validator applies price and inventory rules to item pairs.
type Validator struct {
	SkipPrice     SkipList
	SkipInventory SkipList

	logger *slog.Logger

	// now is overridable in tests for the subscription cutoff.
	now func() time.Time
}

// NewValidator creates a validator with the given skip lists.
func NewValidator(skipPrice, skipInventory SkipList, logger *slog.Logger) *Validator {
	return &Validator{
		SkipPrice:     skipPrice,
		SkipInventory: skipInventory,
		logger:        logger,
		now:           time.Now,
	}
}

// Validate pairs against price and inventory rules. Items exempted by an
// already-active subscription are excluded from all checks. Price
// mismatches are collected before inventory shortfalls.
func (v *Validator) Validate(pairs []Pair) Result {
	var res Result
	for _, p := range pairs {
		if v.Exempt(p) {
			continue
		}
		if !v.ValidPrice(p) {
			res.PriceMismatches = append(res.PriceMismatches, p)
		}
	}
	for _, p := range pairs {
		if v.Exempt(p) {
			continue
		}
		if !v.ValidInventory(p) {
			res.InventoryShortfalls = append(res.InventoryShortfalls, p)
		}
	}
	return res
}

// ValidPrice reports whether the cart item's price matches the catalog.
// Passes when price checks are skipped for this code, when the catalog does
// not price the item (nil or zero, matching providers that use zero for
// "unpriced"), or when both values coerce to the same number.
func (v *Validator) ValidPrice(p Pair) bool {
	if v.SkipPrice.Skip(p.Item.Code.String()) {
		return true
	}
	if p.Canonical == nil || p.Canonical.Price == nil || *p.Canonical.Price == 0 {
		return true
	}
	cartPrice, ok := p.Item.Price.Float()
	if !ok {
		return false
	}
	return cartPrice == *p.Canonical.Price
}

// ValidInventory reports whether enough stock exists for the purchase.
// Passes when inventory checks are skipped for this code, when the cart
// quantity is zero or absent, or when the catalog does not track stock for
// the item. Non-numeric values on either side pass with a warning rather
// than failing the order.
func (v *Validator) ValidInventory(p Pair) bool {
	if v.SkipInventory.Skip(p.Item.Code.String()) {
		return true
	}
	if p.Item.Quantity.IsZero() {
		return true
	}
	if p.Canonical == nil || p.Canonical.Inventory == nil {
		return true
	}
	quantity, ok := p.Item.Quantity.Float()
	if !ok {
		v.warn("cart quantity is not a number", p)
		return true
	}
	return quantity <= *p.Canonical.Inventory
}

// Exempt reports whether a pair is excluded from all checks. Renewals of
// subscriptions that started strictly before today (UTC, date only) are
// not re-validated against current catalog state.
func (v *Validator) Exempt(p Pair) bool {
	if p.Item.SubscriptionFrequency == "" || p.Item.SubscriptionStartDate == "" {
		return false
	}
	start, ok := parseDate(p.Item.SubscriptionStartDate)
	if !ok {
		return false
	}
	today := v.now().UTC().Format("2006-01-02")
	return start < today
}

func (v *Validator) warn(msg string, p Pair) {
	if v.logger != nil {
		v.logger.Warn(msg,
			slog.String("code", p.Item.Code.String()),
			slog.String("name", p.Item.Name),
		)
	}
}

// parseDate extracts the UTC calendar date from a date or timestamp string.
func parseDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format("2006-01-02"), true
		}
	}
	return "", false
}
