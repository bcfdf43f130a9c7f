package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/foxy"
)

// handleWebflow serves pre-payment validation against a Webflow CMS
// collection.
func (h *Handler) handleWebflow(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.webflow.Credentials, map[string]eventFunc{
		foxy.EventValidation: h.webflowPrePayment,
	}, badRequest())
}

func (h *Handler) webflowPrePayment(ctx context.Context, body []byte) (foxy.Response, error) {
	items := h.usableItems(foxy.Items(body))

	if invalid := h.invalidWebflowItems(items); len(invalid) > 0 {
		return foxy.Reject("Invalid items: " + strings.Join(invalid, ",")), nil
	}

	return h.prePayment(ctx, h.webflow, items, h.webflowDetails)
}

// usableItems drops the customer-info pseudo-item some cart templates add;
// it has no catalog record and must not fail validation.
func (h *Handler) usableItems(items []cart.Item) []cart.Item {
	usable := make([]cart.Item, 0, len(items))
	for _, item := range items {
		if item.Name == h.cfg.Datastore.UpdateInfoName {
			continue
		}
		usable = append(usable, item)
	}
	return usable
}

// invalidWebflowItems returns the names of items that cannot be looked up
// in a collection at all: no price, no quantity, no code, or no collection
// to search. These are template problems, reported before any API call.
func (h *Handler) invalidWebflowItems(items []cart.Item) []string {
	var invalid []string
	for _, item := range items {
		var problems []string
		if _, ok := item.Price.Float(); !ok {
			problems = append(problems, fmt.Sprintf("%s has no price.", item.Name))
		}
		if _, ok := item.Quantity.Float(); !ok {
			problems = append(problems, fmt.Sprintf("%s has no quantity.", item.Name))
		}
		if item.Code.String() == "" {
			problems = append(problems, fmt.Sprintf("%s has no code.", item.Name))
		}
		if item.CollectionID(h.cfg.Webflow.CollectionID) == "" {
			problems = append(problems, fmt.Sprintf("%s has no collection_id.", item.Name))
		}
		if len(problems) > 0 {
			h.logger.Info("invalid cart item",
				"name", item.Name,
				"problems", strings.Join(problems, " "))
			invalid = append(invalid, item.Name)
		}
	}
	return invalid
}

// webflowDetails reports one failure class at a time: price mismatches when
// any exist, inventory shortfalls otherwise.
func (h *Handler) webflowDetails(result cart.Result) string {
	if len(result.PriceMismatches) > 0 {
		return h.messages.PriceMismatchDetails(result.PriceMismatches)
	}
	return h.messages.InsufficientInventoryDetails(result.InventoryShortfalls)
}
