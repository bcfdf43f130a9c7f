// Package handler dispatches Foxy webhook deliveries to the provider
// integrations: request validation, event routing and translation of
// internal errors into the {ok, details} envelope.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/config"
	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/idevaffiliate"
	"foxy-webhooks/internal/lune"
	"foxy-webhooks/internal/model"
	"foxy-webhooks/internal/orderdesk"
	"foxy-webhooks/internal/shiptheory"
	"foxy-webhooks/internal/webflow"
	"foxy-webhooks/internal/wix"
)

// MaxRequestBodySize limits webhook bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// Messages surfaced by the dispatcher itself, as opposed to the
// provider-specific rejection details.
const (
	msgBadRequest       = "Bad Request"
	msgUnavailable      = "Service Unavailable. Check the webhook error logs."
	msgInternalError    = "An internal error has occurred"
	msgRateLimited      = "Rate limit reached."
	msgUnsupportedEvent = "Unsupported event."
)

// Handler holds the dependencies shared by all webhook endpoints.
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	validator *cart.Validator
	messages  foxy.Messages

	orderdesk  *orderdesk.Store
	webflow    *webflow.Resolver
	wix        *wix.Store
	shiptheory *shiptheory.Client
	idev       *idevaffiliate.Client
	lune       *lune.Client
}

// New wires every provider integration from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Handler {
	skipPrice := cart.NewSkipList(cfg.Datastore.SkipPriceCodes)
	skipInventory := cart.NewSkipList(cfg.Datastore.SkipInventoryCodes)

	return &Handler{
		cfg:       cfg,
		logger:    logger,
		validator: cart.NewValidator(skipPrice, skipInventory, logger),
		messages: foxy.Messages{
			InsufficientInventory: cfg.Datastore.ErrorInsufficientInventory,
			PriceMismatch:         cfg.Datastore.ErrorPriceMismatch,
		},
		orderdesk: orderdesk.NewStore(
			cfg.OrderDesk.APIKey,
			cfg.OrderDesk.StoreID,
			cfg.Datastore.SkipInventoryUpdateCodes,
			logger,
		),
		webflow: webflow.NewResolver(
			webflow.NewClient(cfg.Webflow.Token),
			cfg.FieldOverrides(),
			cfg.Webflow.CollectionID,
			cfg.Webflow.PageLimit,
			logger,
		),
		wix: wix.NewStore(
			wix.NewClient(cfg.Wix.APIKey, cfg.Wix.AccountID, cfg.Wix.SiteID),
			logger,
		),
		shiptheory: shiptheory.NewClient(cfg.Shiptheory.Email, cfg.Shiptheory.Password),
		idev:       idevaffiliate.NewClient(cfg.IdevAffiliate.APIURL, logger),
		lune:       lune.NewClient(cfg.Lune.APIKey, logger),
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/webhook/orderdesk", h.handleOrderDesk)
	mux.HandleFunc("POST /v1/webhook/webflow", h.handleWebflow)
	mux.HandleFunc("POST /v1/webhook/wix", h.handleWix)
	mux.HandleFunc("POST /v1/webhook/shiptheory", h.handleShiptheory)
	mux.HandleFunc("POST /v1/webhook/idevaffiliate", h.handleIdevAffiliate)
	mux.HandleFunc("POST /v1/webhook/lune", h.handleLune)

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// eventFunc handles one webhook event type against an already-validated
// raw body.
type eventFunc func(ctx context.Context, body []byte) (foxy.Response, error)

// dispatch runs the shared webhook pipeline: credential gate, request
// validation, then event routing. fallback answers events with no route;
// most endpoints use 400 Bad Request, idevAffiliate answers 501.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, credentials func() error, routes map[string]eventFunc, fallback foxy.Response) {
	if err := credentials(); err != nil {
		h.respondError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		h.respondError(w, err)
		return
	}

	req := foxy.FromHTTP(r, body)
	if msg := req.Validate(h.cfg.Foxy.EncryptionKey, h.logger); msg != "" {
		h.reply(w, foxy.Response{
			StatusCode: http.StatusBadRequest,
			Body:       foxy.Body{Details: msg},
		})
		return
	}

	route, ok := routes[req.Event]
	if !ok {
		h.reply(w, fallback)
		return
	}

	resp, err := route(r.Context(), req.Body)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.reply(w, resp)
}

// badRequest is the fallback for unrecognized webhook events.
func badRequest() foxy.Response {
	return foxy.Response{
		StatusCode: http.StatusBadRequest,
		Body:       foxy.Body{Details: msgBadRequest},
	}
}

func (h *Handler) reply(w http.ResponseWriter, resp foxy.Response) {
	if err := resp.Write(w); err != nil {
		h.logger.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// respondError translates an internal error into the webhook envelope.
// Configuration problems answer 503, rate limits 429, a misconfigured
// catalog explains itself with a 500; everything else is an opaque 500 so
// upstream failures never leak into cart responses.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.logger.Error("webhook processing failed", slog.String("error", err.Error()))

	status := http.StatusInternalServerError
	details := msgInternalError

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch {
		case errors.Is(err, model.ErrConfigMissing):
			status = http.StatusServiceUnavailable
			details = msgUnavailable
		case errors.Is(err, model.ErrRateLimited):
			status = http.StatusTooManyRequests
			details = msgRateLimited
		case errors.Is(err, model.ErrCatalogBroken):
			details = apiErr.Message
		}
	}

	h.reply(w, foxy.Response{
		StatusCode: status,
		Body:       foxy.Body{Details: details},
	})
}
