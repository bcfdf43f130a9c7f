// Package foxy implements the Foxy.io webhook contract: request validation,
// HMAC signature verification, payload extraction and the {ok, details}
// response envelope.
package foxy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"foxy-webhooks/internal/cart"
)

// Webhook headers set by Foxy on every delivery.
const (
	HeaderEvent     = "foxy-webhook-event"
	HeaderSignature = "foxy-webhook-signature"
)

// Recognized webhook event types.
const (
	EventValidation         = "validation/payment"
	EventTransactionCreated = "transaction/created"
)

// Request is the webhook request shape the handlers validate. Built from an
// *http.Request after the body has been read, so the raw bytes used for
// signature verification are exactly what arrived on the wire.
type Request struct {
	Method      string
	ContentType string
	Body        []byte
	Event       string
	Signature   string
}

// FromHTTP builds a Request from an already-read HTTP request body.
func FromHTTP(r *http.Request, body []byte) *Request {
	return &Request{
		Method:      r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
		Event:       r.Header.Get(HeaderEvent),
		Signature:   r.Header.Get(HeaderSignature),
	}
}

// Validate checks the request against the webhook contract. Checks run in a
// fixed priority order and the first failure wins. Returns an empty string
// for a valid request, otherwise the error message to send back.
func (req *Request) Validate(encryptionKey string, logger *slog.Logger) string {
	switch {
	case req == nil:
		return "Request Event does not Exist"
	case len(req.Body) == 0:
		return "Empty request."
	case req.Method != http.MethodPost:
		return "Method not allowed"
	case !isJSONContentType(req.ContentType):
		return "Content type should be application/json"
	case !req.verifySignature(encryptionKey, logger):
		return "Forbidden"
	case !json.Valid(req.Body):
		return "Payload is not valid JSON."
	}
	return ""
}

// verifySignature checks the HMAC signature header against the raw body.
// When no encryption key is configured every request passes. A
// validation/payment request with no signature header at all also passes,
// tolerating older Foxy configurations that do not sign cart validations.
func (req *Request) verifySignature(encryptionKey string, logger *slog.Logger) bool {
	if encryptionKey == "" {
		if logger != nil {
			logger.Warn("webhook encryption key is not set; skipping signature verification")
		}
		return true
	}
	if req.Event == EventValidation && req.Signature == "" {
		return true
	}
	return ValidSignature(req.Body, req.Signature, encryptionKey)
}

// ValidSignature reports whether signature is the hex-encoded HMAC-SHA256
// of payload under key. Comparison is constant-time.
func ValidSignature(payload []byte, signature, key string) bool {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Sign returns the hex-encoded HMAC-SHA256 signature of payload under key.
func Sign(payload []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func isJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// Items extracts the embedded cart items from a raw webhook body. A missing
// or malformed items array yields an empty slice, never an error.
func Items(body []byte) []cart.Item {
	embedded := gjson.GetBytes(body, `_embedded.fx:items`)
	if !embedded.IsArray() {
		return nil
	}
	var items []cart.Item
	if err := json.Unmarshal([]byte(embedded.Raw), &items); err != nil {
		return nil
	}
	return items
}
