package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func stripeServer(t *testing.T, handler http.HandlerFunc) StripeOptions {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return StripeOptions{
		SecretKey:  "sk_test",
		APIURL:     srv.URL,
		SuccessURL: "https://shop.test/success",
		CancelURL:  "https://shop.test/cancel",
		Timeout:    2 * time.Second,
	}
}

func TestStripeCheckoutCreateSession(t *testing.T) {
	opts := stripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "1050", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "order-1", r.PostForm.Get("client_reference_id"))
		writeJSON(w, http.StatusOK, `{"id":"cs_123","url":"https://checkout.stripe.test/cs_123","customer":"cus_1"}`)
	})

	session, err := NewStripeCheckout(opts).CreateSession(context.Background(), SessionRequest{
		OrderRef: "order-1",
		Amount:   decimal.RequireFromString("10.50"),
		Currency: "EUR",
		Name:     "Amexan order",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.CorrelationKey)
	assert.Equal(t, "https://checkout.stripe.test/cs_123", session.ClientSecretOrURL)
	assert.Equal(t, "cus_1", session.CustomerID)
}

func TestStripeCheckoutStatusMapping(t *testing.T) {
	tests := []struct {
		body string
		want State
		raw  string
	}{
		{body: `{"status":"complete","payment_status":"paid"}`, want: Success, raw: "paid"},
		{body: `{"status":"complete","payment_status":"no_payment_required"}`, want: Success, raw: "no_payment_required"},
		{body: `{"status":"expired","payment_status":"unpaid"}`, want: Failure, raw: "expired"},
		{body: `{"status":"open","payment_status":"unpaid"}`, want: Pending, raw: "unpaid"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			opts := stripeServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				writeJSON(w, http.StatusOK, tt.body)
			})

			status, err := NewStripeCheckout(opts).GetStatus(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.State)
			assert.Equal(t, tt.raw, status.Raw)
		})
	}
}

func TestStripeErrorResponse(t *testing.T) {
	opts := stripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":{"message":"boom"}}`)
	})

	_, err := NewStripeCheckout(opts).GetStatus(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestStripeTimeout(t *testing.T) {
	opts := stripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, `{}`)
	})
	opts.Timeout = 20 * time.Millisecond

	_, err := NewStripeIntent(opts).GetStatus(context.Background(), "pi_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProvider)
}

func TestStripeRequiresSecretKey(t *testing.T) {
	_, err := NewStripeIntent(StripeOptions{APIURL: "http://unused"}).GetStatus(context.Background(), "pi_1")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewStripeCheckout(StripeOptions{SecretKey: "sk"}).GetStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyCorrelation)
}

func TestStripeIntentStatusMapping(t *testing.T) {
	tests := map[string]State{
		"succeeded":               Success,
		"canceled":                Failure,
		"processing":              Pending,
		"requires_payment_method": Pending,
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			opts := stripeServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/payment_intents/pi_1", r.URL.Path)
				writeJSON(w, http.StatusOK, `{"id":"pi_1","status":"`+raw+`"}`)
			})

			status, err := NewStripeIntent(opts).GetStatus(context.Background(), "pi_1")
			require.NoError(t, err)
			assert.Equal(t, want, status.State)
			assert.Equal(t, raw, status.Raw)
		})
	}
}

func TestStripeIntentCreateSession(t *testing.T) {
	opts := stripeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		writeJSON(w, http.StatusOK, `{"id":"pi_9","client_secret":"pi_9_secret"}`)
	})

	session, err := NewStripeIntent(opts).CreateSession(context.Background(), SessionRequest{
		OrderRef: "order-9",
		Amount:   decimal.NewFromInt(25),
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_9", session.CorrelationKey)
	assert.Equal(t, "pi_9_secret", session.ClientSecretOrURL)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(NewStripeCheckout(StripeOptions{}), NewPayPal(PayPalOptions{}))

	p, err := reg.Get(NamePayPal)
	require.NoError(t, err)
	assert.Equal(t, NamePayPal, p.Name())

	_, err = reg.Get("klarna")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "failure", Failure.String())
	assert.Equal(t, "pending", Pending.String())
}
