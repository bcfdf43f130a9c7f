package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/lune"
)

const msgLuneOrderFailed = "An internal error has occurred when creating a lune order based on the CO2 estimate ID"

// handleLune places a carbon-offset order for each completed transaction
// that carries a Lune estimate.
func (h *Handler) handleLune(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.lune.Credentials, map[string]eventFunc{
		foxy.EventTransactionCreated: h.luneTransactionCreated,
	}, badRequest())
}

// luneTransactionCreated is best-effort: a transaction without an offset
// estimate is approved untouched, and a failed order never blocks the sale,
// it just reports ok=false so the delivery shows up in the error logs.
func (h *Handler) luneTransactionCreated(ctx context.Context, body []byte) (foxy.Response, error) {
	tx, err := foxy.ParseTransaction(body)
	if err != nil {
		return foxy.Response{}, err
	}

	estimateID, ok := lune.EstimateID(tx)
	if !ok || estimateID == "" {
		h.logger.Info("no CO2 estimate on transaction",
			slog.String("transaction", tx.ID.String()))
		return foxy.Response{
			StatusCode: http.StatusOK,
			Body:       foxy.Body{Details: "No lune CO2 estimate ID is provided", OK: true},
		}, nil
	}

	order, err := h.lune.PlaceOrder(ctx, estimateID, tx)
	if err != nil {
		h.logger.Error("Lune order failed",
			slog.String("transaction", tx.ID.String()),
			slog.String("error", err.Error()))
		return foxy.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       foxy.Body{Details: msgLuneOrderFailed},
		}, nil
	}
	if order.ID == "" {
		h.logger.Error("Lune order rejected",
			slog.String("transaction", tx.ID.String()),
			slog.Any("response", order))
		return foxy.Reject(msgLuneOrderFailed), nil
	}

	h.logger.Info("Lune order created",
		slog.String("transaction", tx.ID.String()),
		slog.String("order", order.ID))
	return foxy.Response{
		StatusCode: http.StatusOK,
		Body: foxy.Body{
			Details: fmt.Sprintf("Order %s created successfully on lune", order.ID),
			OK:      true,
		},
	}, nil
}
