// Package payments adapts external payment providers to one shared contract.
// Provider specific status strings never leave this package; callers only see
// a State.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type State int

const (
	Pending State = iota
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "pending"
}

// Status is a provider status translated to a State. Raw keeps the provider's
// own value for logs and diagnostics.
type Status struct {
	State State
	Raw   string
}

type SessionRequest struct {
	OrderRef    string
	Amount      decimal.Decimal
	Currency    string
	Name        string
	Description string
	Locale      string
	CustomerID  string
}

type Session struct {
	CorrelationKey string `json:"correlationKey"`
	// ClientSecretOrURL is the hosted page URL for redirect flows and the
	// client secret for intent flows.
	ClientSecretOrURL string `json:"clientSecretOrUrl"`
	CustomerID        string `json:"customerId,omitempty"`
}

type Provider interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetStatus(ctx context.Context, correlationKey string) (Status, error)
}

var (
	// ErrProvider wraps every non-2xx answer from a provider.
	ErrProvider         = errors.New("payment provider error")
	ErrUnknownProvider  = errors.New("unknown payment provider")
	ErrEmptyCorrelation = errors.New("correlation key is empty")
	ErrNotConfigured    = errors.New("payment provider is not configured")
)

const (
	NameStripeCheckout = "stripe_checkout"
	NameStripeIntent   = "stripe_intent"
	NamePayPal         = "paypal"
)

type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Get(name string) (Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func newClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

func checkResponse(provider string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s returned status %d: %s", ErrProvider, provider, resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// minorUnits converts an amount to the smallest currency unit.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
