package shiptheory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foxy-webhooks/internal/model"
)

func TestCredentials(t *testing.T) {
	assert.NoError(t, NewClient("a@b.c", "pw").Credentials())
	assert.ErrorIs(t, NewClient("", "pw").Credentials(), model.ErrConfigMissing)
	assert.ErrorIs(t, NewClient("a@b.c", "").Credentials(), model.ErrConfigMissing)
}

func TestAuthenticateAndCreateShipment(t *testing.T) {
	var shipmentAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			var login map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&login))
			assert.Equal(t, "a@b.c", login["email"])
			assert.Equal(t, "pw", login["password"])
			w.Write([]byte(`{"success": true, "data": {"token": "tok-123"}}`))
		case "/shipments":
			shipmentAuth = r.Header.Get("Authorization")
			var shipment Shipment
			require.NoError(t, json.NewDecoder(r.Body).Decode(&shipment))
			assert.Equal(t, "9001S0", shipment.Reference)
			w.Write([]byte(`{"success": true, "message": "created"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient("a@b.c", "pw")
	client.SetBaseURL(server.URL)

	ctx := context.Background()
	token, err := client.Authenticate(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-123", token)

	resp, err := client.CreateShipment(ctx, token, &Shipment{Reference: "9001S0"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Bearer tok-123", shipmentAuth)
}

func TestAuthenticateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	client := NewClient("a@b.c", "pw")
	client.SetBaseURL(server.URL)
	_, err := client.Authenticate(context.Background())
	require.Error(t, err)
}

func TestCreateShipmentRequiresToken(t *testing.T) {
	client := NewClient("a@b.c", "pw")
	_, err := client.CreateShipment(context.Background(), "", &Shipment{})
	require.Error(t, err)
}

// One client is shared by all in-flight webhook deliveries, so concurrent
// authentications must each get their own token without touching shared
// state. Run with -race.
func TestConcurrentDeliveries(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			n := calls.Add(1)
			fmt.Fprintf(w, `{"success": true, "data": {"token": "tok-%d"}}`, n)
		case "/shipments":
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer tok-") {
				t.Errorf("Authorization = %q, want a per-delivery token", auth)
			}
			w.Write([]byte(`{"success": true}`))
		}
	}))
	defer server.Close()

	client := NewClient("a@b.c", "pw")
	client.SetBaseURL(server.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			token, err := client.Authenticate(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			resp, err := client.CreateShipment(ctx, token, &Shipment{Reference: "42S0"})
			if err != nil {
				t.Error(err)
				return
			}
			if !resp.Success {
				t.Error("shipment was not accepted")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8), calls.Load(), "every delivery authenticates for itself")
}
