package lune

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeTransaction(t *testing.T, raw string) *foxy.Transaction {
	t.Helper()
	tx, err := foxy.ParseTransaction([]byte(raw))
	require.NoError(t, err)
	return tx
}

func TestEstimateID(t *testing.T) {
	tx := decodeTransaction(t, `{
		"id": 1,
		"_embedded": {
			"fx:shipments": [{"shipping_service_id": 7}],
			"fx:attributes": [
				{"name": "rate_id_9", "value": "wrong"},
				{"name": "rate_id_7", "value": "est_abc"}
			]
		}
	}`)
	id, ok := EstimateID(tx)
	require.True(t, ok)
	assert.Equal(t, "est_abc", id)
}

func TestEstimateIDMissing(t *testing.T) {
	// No attribute for the selected service.
	tx := decodeTransaction(t, `{
		"id": 1,
		"_embedded": {"fx:shipments": [{"shipping_service_id": 7}], "fx:attributes": []}
	}`)
	_, ok := EstimateID(tx)
	assert.False(t, ok)

	// No shipments at all.
	tx = decodeTransaction(t, `{"id": 1}`)
	_, ok = EstimateID(tx)
	assert.False(t, ok)
}

func TestCredentials(t *testing.T) {
	assert.NoError(t, NewClient("key", testLogger()).Credentials())
	assert.ErrorIs(t, NewClient("", testLogger()).Credentials(), model.ErrConfigMissing)
}

func TestPlaceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/by-estimate", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var payload struct {
			EstimateID string            `json:"estimate_id"`
			Metadata   map[string]string `json:"metadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "est_abc", payload.EstimateID)
		assert.Equal(t, "buyer@example.com", payload.Metadata["customer_email"])
		assert.Equal(t, "42", payload.Metadata["transaction_id"])

		w.Write([]byte(`{"id": "order_1"}`))
	}))
	defer server.Close()

	client := NewClient("key", testLogger())
	client.SetBaseURL(server.URL)

	tx := decodeTransaction(t, `{"id": 42, "customer_email": "buyer@example.com"}`)
	order, err := client.PlaceOrder(context.Background(), "est_abc", tx)
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.Nil(t, order.Error)
}

func TestPlaceOrderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": {"message": "estimate expired"}}`))
	}))
	defer server.Close()

	client := NewClient("key", testLogger())
	client.SetBaseURL(server.URL)

	tx := decodeTransaction(t, `{"id": 42}`)
	order, err := client.PlaceOrder(context.Background(), "est_old", tx)
	require.NoError(t, err)
	assert.Empty(t, order.ID)
	require.NotNil(t, order.Error)
	assert.Equal(t, "estimate expired", order.Error.Message)
}

func TestPlaceOrderServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("key", testLogger())
	client.SetBaseURL(server.URL)

	tx := decodeTransaction(t, `{"id": 42}`)
	_, err := client.PlaceOrder(context.Background(), "est_abc", tx)
	assert.ErrorIs(t, err, model.ErrUpstreamError)
}
