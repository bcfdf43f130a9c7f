package foxy

import (
	"fmt"
	"strings"

	"foxy-webhooks/internal/cart"
)

// Default error message templates. Operators override these through
// configuration to localize or rebrand the rejection text.
const (
	DefaultInsufficientInventory = "Insufficient inventory for these items:"
	DefaultPriceMismatch         = "Prices do not match:"
)

// Messages formats the details strings sent back on business-rule
// rejections. Zero values fall back to the built-in English templates.
type Messages struct {
	InsufficientInventory string
	PriceMismatch         string
}

// InsufficientInventoryDetails lists each short item's name and how much
// stock remains. Empty input yields an empty string.
func (m Messages) InsufficientInventoryDetails(pairs []cart.Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	template := m.InsufficientInventory
	if template == "" {
		template = DefaultInsufficientInventory
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		name := p.Item.Name
		available := 0.0
		if p.Canonical != nil {
			if p.Canonical.Name != "" {
				name = p.Canonical.Name
			}
			if p.Canonical.Inventory != nil {
				available = *p.Canonical.Inventory
			}
		}
		parts = append(parts, fmt.Sprintf("%s: only %v available", name, available))
	}
	return template + " " + strings.Join(parts, ";")
}

// PriceMismatchDetails lists the names of the mismatched items. Empty input
// yields an empty string.
func (m Messages) PriceMismatchDetails(pairs []cart.Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	template := m.PriceMismatch
	if template == "" {
		template = DefaultPriceMismatch
	}
	names := make([]string, 0, len(pairs))
	for _, p := range pairs {
		names = append(names, p.Item.Name)
	}
	return template + " " + strings.Join(names, ", ")
}
