package handler

import (
	"context"
	"net/http"

	"foxy-webhooks/internal/foxy"
)

// handleIdevAffiliate credits affiliates for completed transactions. This
// endpoint handles only transaction/created; anything else answers 501.
func (h *Handler) handleIdevAffiliate(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.idev.Credentials, map[string]eventFunc{
		foxy.EventTransactionCreated: h.idevTransactionCreated,
	}, foxy.Response{
		StatusCode: http.StatusNotImplemented,
		Body:       foxy.Body{Details: msgUnsupportedEvent},
	})
}

func (h *Handler) idevTransactionCreated(ctx context.Context, body []byte) (foxy.Response, error) {
	tx, err := foxy.ParseTransaction(body)
	if err != nil {
		return foxy.Response{}, err
	}
	if len(tx.Embedded.Items) == 0 {
		return badRequest(), nil
	}

	if err := h.idev.ProcessTransaction(ctx, tx); err != nil {
		return foxy.Response{}, err
	}
	return foxy.Accept(), nil
}
