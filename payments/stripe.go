package payments

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type StripeOptions struct {
	SecretKey  string
	APIURL     string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

type stripeClient struct {
	client *resty.Client
	opts   StripeOptions
}

func newStripeClient(opts StripeOptions) stripeClient {
	return stripeClient{
		client: newClient(opts.APIURL, opts.Timeout).SetAuthToken(opts.SecretKey),
		opts:   opts,
	}
}

func (s stripeClient) configured() error {
	if s.opts.SecretKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// StripeCheckout drives the hosted redirect checkout. The correlation key is
// the checkout session id.
type StripeCheckout struct {
	stripeClient
}

func NewStripeCheckout(opts StripeOptions) *StripeCheckout {
	return &StripeCheckout{newStripeClient(opts)}
}

func (s *StripeCheckout) Name() string { return NameStripeCheckout }

type stripeCheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Customer      string `json:"customer"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func (s *StripeCheckout) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	form := map[string]string{
		"mode":                                          "payment",
		"success_url":                                   s.opts.SuccessURL,
		"cancel_url":                                    s.opts.CancelURL,
		"client_reference_id":                           req.OrderRef,
		"line_items[0][quantity]":                       "1",
		"line_items[0][price_data][currency]":           strings.ToLower(req.Currency),
		"line_items[0][price_data][unit_amount]":        strconv.FormatInt(minorUnits(req.Amount), 10),
		"line_items[0][price_data][product_data][name]": req.Name,
	}
	if req.Description != "" {
		form["line_items[0][price_data][product_data][description]"] = req.Description
	}
	if req.Locale != "" {
		form["locale"] = req.Locale
	}
	if req.CustomerID != "" {
		form["customer"] = req.CustomerID
	}

	var out stripeCheckoutSession
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/v1/checkout/sessions")
	if err := checkResponse("stripe", resp, err); err != nil {
		return nil, err
	}
	return &Session{CorrelationKey: out.ID, ClientSecretOrURL: out.URL, CustomerID: out.Customer}, nil
}

func (s *StripeCheckout) GetStatus(ctx context.Context, sessionID string) (Status, error) {
	if sessionID == "" {
		return Status{}, ErrEmptyCorrelation
	}
	if err := s.configured(); err != nil {
		return Status{}, err
	}
	var out stripeCheckoutSession
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", sessionID).
		SetResult(&out).
		Get("/v1/checkout/sessions/{id}")
	if err := checkResponse("stripe", resp, err); err != nil {
		return Status{}, err
	}

	switch {
	case out.PaymentStatus == "paid" || out.PaymentStatus == "no_payment_required":
		return Status{State: Success, Raw: out.PaymentStatus}, nil
	case out.Status == "expired":
		return Status{State: Failure, Raw: out.Status}, nil
	}
	return Status{State: Pending, Raw: out.PaymentStatus}, nil
}

// StripeIntent verifies payment intents confirmed by the client. The
// correlation key is the payment intent id.
type StripeIntent struct {
	stripeClient
}

func NewStripeIntent(opts StripeOptions) *StripeIntent {
	return &StripeIntent{newStripeClient(opts)}
}

func (s *StripeIntent) Name() string { return NameStripeIntent }

type stripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Customer     string `json:"customer"`
	Status       string `json:"status"`
}

func (s *StripeIntent) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	form := map[string]string{
		"amount":                             strconv.FormatInt(minorUnits(req.Amount), 10),
		"currency":                           strings.ToLower(req.Currency),
		"description":                        req.Description,
		"metadata[order_ref]":                req.OrderRef,
		"automatic_payment_methods[enabled]": "true",
	}
	if req.CustomerID != "" {
		form["customer"] = req.CustomerID
	}

	var out stripePaymentIntent
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/v1/payment_intents")
	if err := checkResponse("stripe", resp, err); err != nil {
		return nil, err
	}
	return &Session{CorrelationKey: out.ID, ClientSecretOrURL: out.ClientSecret, CustomerID: out.Customer}, nil
}

func (s *StripeIntent) GetStatus(ctx context.Context, intentID string) (Status, error) {
	if intentID == "" {
		return Status{}, ErrEmptyCorrelation
	}
	if err := s.configured(); err != nil {
		return Status{}, err
	}
	var out stripePaymentIntent
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", intentID).
		SetResult(&out).
		Get("/v1/payment_intents/{id}")
	if err := checkResponse("stripe", resp, err); err != nil {
		return Status{}, err
	}

	switch out.Status {
	case "succeeded":
		return Status{State: Success, Raw: out.Status}, nil
	case "canceled":
		return Status{State: Failure, Raw: out.Status}, nil
	}
	return Status{State: Pending, Raw: out.Status}, nil
}
