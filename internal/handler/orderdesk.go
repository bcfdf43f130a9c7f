package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/model"
)

// handleOrderDesk serves both pre-payment validation and post-transaction
// inventory deduction against OrderDesk.
func (h *Handler) handleOrderDesk(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.orderdesk.Credentials, map[string]eventFunc{
		foxy.EventValidation:         h.orderDeskPrePayment,
		foxy.EventTransactionCreated: h.orderDeskTransactionCreated,
	}, badRequest())
}

func (h *Handler) orderDeskPrePayment(ctx context.Context, body []byte) (foxy.Response, error) {
	return h.prePayment(ctx, h.orderdesk, foxy.Items(body), h.orderDeskDetails)
}

// orderDeskDetails reports inventory shortfalls first, then the mismatched
// prices as a plain item list, newline-separated.
func (h *Handler) orderDeskDetails(result cart.Result) string {
	var parts []string
	if detail := h.messages.InsufficientInventoryDetails(result.InventoryShortfalls); detail != "" {
		parts = append(parts, detail)
	}
	if len(result.PriceMismatches) > 0 {
		names := make([]string, 0, len(result.PriceMismatches))
		for _, p := range result.PriceMismatches {
			names = append(names, p.Item.Name)
		}
		parts = append(parts, "Invalid items: "+strings.Join(names, ","))
	}
	return strings.Join(parts, "\n")
}

// orderDeskTransactionCreated deducts the purchased quantities from
// OrderDesk stock. A failed push answers 500; the transaction itself has
// already been captured, so there is nothing to reject.
func (h *Handler) orderDeskTransactionCreated(ctx context.Context, body []byte) (foxy.Response, error) {
	items := foxy.Items(body)
	canonical, err := h.orderdesk.FetchCanonicalItems(ctx, items)
	if err != nil {
		return foxy.Response{}, err
	}

	updates := make([]cart.CanonicalItem, 0, len(items))
	for _, pair := range cart.PairByCode(items, canonical) {
		if pair.Canonical == nil || pair.Canonical.Inventory == nil {
			h.logger.Warn("transaction item not in OrderDesk inventory, skipping deduction",
				slog.String("code", pair.Item.Code.String()))
			continue
		}
		quantity, ok := pair.Item.Quantity.Float()
		if !ok {
			continue
		}
		updated := *pair.Canonical
		updated.Inventory = cart.Float(*pair.Canonical.Inventory - quantity)
		updates = append(updates, updated)
	}

	if err := h.orderdesk.UpdateInventory(ctx, updates); err != nil {
		if errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrConfigMissing) {
			return foxy.Response{}, err
		}
		h.logger.Error("OrderDesk inventory update failed",
			slog.String("transaction", foxy.TransactionID(body)),
			slog.String("error", err.Error()))
		return internalServerError(), nil
	}

	h.logger.Info("OrderDesk inventory updated",
		slog.String("transaction", foxy.TransactionID(body)),
		slog.Int("items", len(updates)))
	return foxy.Accept(), nil
}
