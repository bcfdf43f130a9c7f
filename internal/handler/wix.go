package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/wix"
)

// handleWix serves pre-payment validation against a Wix store.
func (h *Handler) handleWix(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.wix.Credentials, map[string]eventFunc{
		foxy.EventValidation: h.wixPrePayment,
	}, badRequest())
}

func (h *Handler) wixPrePayment(ctx context.Context, body []byte) (foxy.Response, error) {
	resp, err := h.prePayment(ctx, h.wix, foxy.Items(body), h.wixDetails)
	if err != nil {
		// An item that cannot be located in Wix rejects the payment
		// rather than erroring: the store is reachable, the cart is wrong.
		var resolution *wix.ResolutionError
		if errors.As(err, &resolution) {
			return foxy.Reject(resolution.Details), nil
		}
		return foxy.Response{}, err
	}
	return resp, nil
}

// wixDetails reports failed item codes, inventory shortfalls before price
// mismatches.
func (h *Handler) wixDetails(result cart.Result) string {
	var parts []string
	if len(result.InventoryShortfalls) > 0 {
		parts = append(parts, fmt.Sprintf("Insufficient inventory for these items: %s.",
			joinCodes(result.InventoryShortfalls)))
	}
	if len(result.PriceMismatches) > 0 {
		parts = append(parts, fmt.Sprintf("Price does not match for these items: %s.",
			joinCodes(result.PriceMismatches)))
	}
	return strings.Join(parts, " ")
}

func joinCodes(pairs []cart.Pair) string {
	codes := make([]string, 0, len(pairs))
	for _, p := range pairs {
		codes = append(codes, p.Item.Code.String())
	}
	return strings.Join(codes, ",")
}
