package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paypalServer(t *testing.T, orderStatus string, tokenCalls *int32) PayPalOptions {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		writeJSON(w, http.StatusOK, `{"access_token":"tok","expires_in":3600}`)
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusCreated, `{"id":"PP-1","status":"CREATED","links":[{"href":"https://paypal.test/approve","rel":"approve"}]}`)
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"id":"PP-1","status":"`+orderStatus+`"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return PayPalOptions{
		ClientID:     "client",
		ClientSecret: "secret",
		APIURL:       srv.URL,
		ReturnURL:    "https://shop.test/return",
		CancelURL:    "https://shop.test/cancel",
		Timeout:      2 * time.Second,
	}
}

func TestPayPalCreateSessionCachesToken(t *testing.T) {
	var calls int32
	pp := NewPayPal(paypalServer(t, "APPROVED", &calls))
	ctx := context.Background()

	session, err := pp.CreateSession(ctx, SessionRequest{
		OrderRef: "order-1",
		Amount:   decimal.RequireFromString("12.5"),
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, "PP-1", session.CorrelationKey)
	assert.Equal(t, "https://paypal.test/approve", session.ClientSecretOrURL)

	_, err = pp.GetStatus(ctx, "PP-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestPayPalStatusMapping(t *testing.T) {
	tests := map[string]State{
		"APPROVED":              Success,
		"COMPLETED":             Success,
		"VOIDED":                Failure,
		"CREATED":               Pending,
		"PAYER_ACTION_REQUIRED": Pending,
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			var calls int32
			status, err := NewPayPal(paypalServer(t, raw, &calls)).GetStatus(context.Background(), "PP-1")
			require.NoError(t, err)
			assert.Equal(t, want, status.State)
			assert.Equal(t, raw, status.Raw)
		})
	}
}

func TestPayPalNotConfigured(t *testing.T) {
	_, err := NewPayPal(PayPalOptions{}).GetStatus(context.Background(), "PP-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPayPalUnknownOrder(t *testing.T) {
	var calls int32
	_, err := NewPayPal(paypalServer(t, "APPROVED", &calls)).GetStatus(context.Background(), "PP-404")
	assert.ErrorIs(t, err, ErrProvider)
}
