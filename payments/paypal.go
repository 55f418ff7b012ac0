package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

type PayPalOptions struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	ReturnURL    string
	CancelURL    string
	Timeout      time.Duration
}

// PayPal uses the orders API. The correlation key is the PayPal order id.
type PayPal struct {
	client *resty.Client
	opts   PayPalOptions

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPal(opts PayPalOptions) *PayPal {
	return &PayPal{client: newClient(opts.APIURL, opts.Timeout), opts: opts}
}

func (p *PayPal) Name() string { return NamePayPal }

type paypalToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached client-credentials token, fetching a new one
// shortly before the old one expires.
func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	if p.opts.ClientID == "" || p.opts.ClientSecret == "" {
		return "", ErrNotConfigured
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	var out paypalToken
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.opts.ClientID, p.opts.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&out).
		Post("/v1/oauth2/token")
	if err := checkResponse("paypal", resp, err); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: paypal token not found in response", ErrProvider)
	}

	p.token = out.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalOrder struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Links  []paypalLink `json:"links"`
}

func (p *PayPal) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	appContext := map[string]any{
		"return_url": p.opts.ReturnURL,
		"cancel_url": p.opts.CancelURL,
	}
	if req.Locale != "" {
		appContext["locale"] = req.Locale
	}
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.OrderRef,
			"description":  req.Description,
			"amount": map[string]string{
				"currency_code": req.Currency,
				"value":         req.Amount.StringFixed(2),
			},
		}},
		"application_context": appContext,
	}

	var out paypalOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post("/v2/checkout/orders")
	if err := checkResponse("paypal", resp, err); err != nil {
		return nil, err
	}

	session := &Session{CorrelationKey: out.ID}
	for _, l := range out.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			session.ClientSecretOrURL = l.Href
			break
		}
	}
	return session, nil
}

func (p *PayPal) GetStatus(ctx context.Context, orderID string) (Status, error) {
	if orderID == "" {
		return Status{}, ErrEmptyCorrelation
	}
	token, err := p.accessToken(ctx)
	if err != nil {
		return Status{}, err
	}

	var out paypalOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("id", orderID).
		SetResult(&out).
		Get("/v2/checkout/orders/{id}")
	if err := checkResponse("paypal", resp, err); err != nil {
		return Status{}, err
	}

	switch out.Status {
	case "APPROVED", "COMPLETED":
		return Status{State: Success, Raw: out.Status}, nil
	case "VOIDED":
		return Status{State: Failure, Raw: out.Status}, nil
	}
	return Status{State: Pending, Raw: out.Status}, nil
}
