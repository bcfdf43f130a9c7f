package handler

import (
	"context"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/datastore"
	"foxy-webhooks/internal/foxy"
)

// detailFunc formats the rejection details for a failed validation.
// Providers word their rejections differently, so each endpoint supplies
// its own formatter.
type detailFunc func(cart.Result) string

// prePayment runs the shared cart validation flow: resolve catalog records,
// pair them with cart items by code, validate, and answer with either an
// approval or a formatted rejection.
func (h *Handler) prePayment(ctx context.Context, store datastore.DataStore, items []cart.Item, details detailFunc) (foxy.Response, error) {
	canonical, err := store.FetchCanonicalItems(ctx, items)
	if err != nil {
		return foxy.Response{}, err
	}

	pairs := cart.PairByCode(items, canonical)
	result := h.validator.Validate(pairs)
	if result.OK() {
		return foxy.Accept(), nil
	}
	return foxy.Reject(details(result)), nil
}
