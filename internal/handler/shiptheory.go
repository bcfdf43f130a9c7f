package handler

import (
	"context"
	"log/slog"
	"net/http"

	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/shiptheory"
)

// handleShiptheory forwards completed transactions to Shiptheory as
// shipments.
func (h *Handler) handleShiptheory(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.shiptheory.Credentials, map[string]eventFunc{
		foxy.EventTransactionCreated: h.shiptheoryTransactionCreated,
	}, badRequest())
}

func (h *Handler) shiptheoryTransactionCreated(ctx context.Context, body []byte) (foxy.Response, error) {
	tx, err := foxy.ParseTransaction(body)
	if err != nil {
		return foxy.Response{}, err
	}

	shipment, err := shiptheory.FromTransaction(tx)
	if err != nil {
		h.logger.Error("cannot build shipment from transaction",
			slog.String("transaction", tx.ID.String()),
			slog.String("error", err.Error()))
		return internalServerError(), nil
	}

	token, err := h.shiptheory.Authenticate(ctx)
	if err != nil {
		h.logger.Error("Shiptheory authentication failed", slog.String("error", err.Error()))
		return internalServerError(), nil
	}

	resp, err := h.shiptheory.CreateShipment(ctx, token, shipment)
	if err != nil {
		return foxy.Response{}, err
	}
	if !resp.Success {
		h.logger.Error("Shiptheory rejected the shipment",
			slog.String("transaction", tx.ID.String()),
			slog.String("message", resp.Message))
		return internalServerError(), nil
	}

	h.logger.Info("shipment created",
		slog.String("transaction", tx.ID.String()),
		slog.String("reference", shipment.Reference))
	return foxy.Accept(), nil
}

func internalServerError() foxy.Response {
	return foxy.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       foxy.Body{Details: "Internal Server Error"},
	}
}
