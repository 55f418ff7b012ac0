package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Kariqs/amexan-checkout/events"
	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/metrics"
	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/payments"
	"github.com/Kariqs/amexan-checkout/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const logoURL = "https://www.amexan.store/images/logo.jpg"

type GuestUser struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=32"`
	// Password is optional; guests without one activate through email.
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

type DraftItem struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type OrderDraft struct {
	UserID         string          `json:"userId" validate:"omitempty,uuid"`
	Items          []DraftItem     `json:"items" validate:"required,min=1,dive"`
	PaymentTypeID  string          `json:"paymentTypeId" validate:"required,uuid"`
	DeliveryTypeID string          `json:"deliveryTypeId" validate:"required,uuid"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency" validate:"omitempty,len=3,alpha"`
}

// PaymentCorrelation carries whatever provider key the client obtained
// before calling checkout.
type PaymentCorrelation struct {
	SessionID       string `json:"sessionId"`
	PaymentIntentID string `json:"paymentIntentId"`
	CustomerID      string `json:"customerId"`
}

type CheckoutRequest struct {
	Guest   *GuestUser         `json:"guest"`
	Draft   OrderDraft         `json:"order"`
	Payment PaymentCorrelation `json:"payment"`
}

type CheckoutResult struct {
	OrderID  string             `json:"orderId"`
	Status   models.OrderStatus `json:"status"`
	ExpireAt *time.Time         `json:"expireAt,omitempty"`
}

type paymentPath string

const (
	pathOffline  paymentPath = "offline"
	pathIntent   paymentPath = "intent"
	pathDeferred paymentPath = "deferred"
)

type CheckoutConfig struct {
	OrderGraceWindow time.Duration
	UserGraceWindow  time.Duration
	ActivationTTL    time.Duration
	JWTSecret        string
	FrontendURL      string
}

type CheckoutDeps struct {
	Orders        OrderStore
	Users         UserStore
	Inventory     InventoryLedger
	PaymentTypes  PaymentTypeLookup
	DeliveryTypes DeliveryTypeLookup
	Settings      SettingsStore
	Providers     payments.Registry
	Confirmer     *Confirmer
	Mailer        utils.Mailer
	Events        events.Publisher
	Metrics       *metrics.Metrics
}

type Checkout struct {
	CheckoutDeps
	cfg      CheckoutConfig
	validate *validator.Validate
	now      func() time.Time
}

func NewCheckout(d CheckoutDeps, cfg CheckoutConfig) *Checkout {
	if cfg.ActivationTTL == 0 {
		cfg.ActivationTTL = 24 * time.Hour
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	return &Checkout{
		CheckoutDeps: d,
		cfg:          cfg,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		now:          time.Now,
	}
}

// Checkout validates the draft, picks the payment path from the stored
// payment type and persists the order. Offline and direct intent orders are
// confirmed before returning; deferred orders are written provisional and
// confirmed later by the Reconciler.
func (c *Checkout) Checkout(ctx context.Context, req CheckoutRequest) (res *CheckoutResult, err error) {
	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()

	path := paymentPath("unknown")
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if c.Metrics != nil {
			c.Metrics.Checkouts.WithLabelValues(string(path), result).Inc()
		}
	}()

	if err := c.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	paymentType, err := c.PaymentTypes.FindByID(ctx, req.Draft.PaymentTypeID)
	if errors.Is(err, models.ErrLookupNotFound) || (err == nil && !paymentType.Enabled) {
		return nil, ErrPaymentTypeUnavailable
	}
	if err != nil {
		return nil, err
	}
	deliveryType, err := c.DeliveryTypes.FindByID(ctx, req.Draft.DeliveryTypeID)
	if errors.Is(err, models.ErrLookupNotFound) || (err == nil && !deliveryType.Enabled) {
		return nil, ErrDeliveryTypeUnavailable
	}
	if err != nil {
		return nil, err
	}

	chosen, providerName, correlationKey, err := decidePath(paymentType.Name, req.Payment)
	if err != nil {
		return nil, err
	}
	path = chosen
	span.SetAttributes(
		attribute.String("checkout.path", string(path)),
		attribute.String("checkout.provider", providerName),
	)

	if path == pathIntent {
		// a replayed intent returns the order it already paid for
		if prior, err := c.priorIntentOrder(ctx, correlationKey); err != nil || prior != nil {
			return prior, err
		}
		if err := c.verifyIntent(ctx, correlationKey); err != nil {
			return nil, err
		}
	} else if path == pathDeferred {
		if _, err := c.Providers.Get(providerName); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}

	settings, err := c.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	user, isGuest, err := c.resolveUser(ctx, req, path, now)
	if err != nil {
		return nil, err
	}
	if isGuest {
		c.sendActivation(ctx, user, settings)
	}

	order := &models.Order{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		PaymentTypeID:  paymentType.ID,
		DeliveryTypeID: deliveryType.ID,
		Total:          req.Draft.Total,
		Currency:       strings.ToUpper(req.Draft.Currency),
		Status:         models.OrderPending,
		Provider:       providerName,
	}
	if order.Currency == "" {
		order.Currency = settings.Currency
	}
	for _, item := range req.Draft.Items {
		order.OrderItems = append(order.OrderItems, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	setCorrelation(order, req.Payment)
	if path == pathDeferred {
		expireAt := now.Add(c.cfg.OrderGraceWindow)
		order.ExpireAt = &expireAt
	}

	if err := c.Orders.CreateWithItems(ctx, order); err != nil {
		if path == pathIntent {
			// lost the race against a concurrent call with the same intent
			if prior, lookupErr := c.priorIntentOrder(ctx, correlationKey); lookupErr == nil && prior != nil {
				return prior, nil
			}
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	switch path {
	case pathIntent:
		if err := c.Orders.MarkPaid(ctx, order.ID); err != nil {
			c.discard(ctx, order.ID)
			return nil, fmt.Errorf("failed to mark order paid: %w", err)
		}
		order.Status = models.OrderPaid
		fallthrough
	case pathOffline:
		if err := c.Confirmer.DecrementInventory(ctx, order.OrderItems); err != nil {
			logger.Error("inventory decrement failed after checkout",
				zap.String("order_id", order.ID), zap.Error(err))
			if path == pathOffline {
				c.discard(ctx, order.ID)
			}
			return nil, err
		}
		c.Confirmer.Deliver(ctx, user, order, settings)
	}

	c.publish(ctx, events.Event{
		Type:           events.OrderPlaced,
		OrderID:        order.ID,
		Provider:       providerName,
		CorrelationKey: correlationKey,
	})

	return &CheckoutResult{OrderID: order.ID, Status: order.Status, ExpireAt: order.ExpireAt}, nil
}

func (c *Checkout) validateRequest(ctx context.Context, req CheckoutRequest) error {
	if err := c.validate.StructCtx(ctx, req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if req.Guest == nil && req.Draft.UserID == "" {
		return fmt.Errorf("%w: either guest details or a user id is required", ErrValidation)
	}
	if req.Draft.Total.IsNegative() {
		return fmt.Errorf("%w: total must not be negative", ErrValidation)
	}

	ids := make([]string, 0, len(req.Draft.Items))
	seen := make(map[string]struct{}, len(req.Draft.Items))
	for _, item := range req.Draft.Items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	products, err := c.Inventory.FindMany(ctx, ids)
	if err != nil {
		return err
	}
	if len(products) != len(ids) {
		return fmt.Errorf("%w: order references an unknown product", ErrValidation)
	}
	return nil
}

// decidePath maps the stored payment type and the supplied correlation keys
// to a checkout path and the provider that owns the key.
func decidePath(paymentType string, p PaymentCorrelation) (paymentPath, string, string, error) {
	switch paymentType {
	case models.PaymentCashOnDelivery, models.PaymentBankTransfer:
		return pathOffline, "", "", nil
	case models.PaymentCard:
		if p.PaymentIntentID != "" {
			return pathIntent, payments.NameStripeIntent, p.PaymentIntentID, nil
		}
		if p.SessionID != "" {
			return pathDeferred, payments.NameStripeCheckout, p.SessionID, nil
		}
		return "", "", "", ErrNoCorrelationKey
	case models.PaymentPayPal:
		if p.SessionID != "" {
			return pathDeferred, payments.NamePayPal, p.SessionID, nil
		}
		return "", "", "", ErrNoCorrelationKey
	}
	return "", "", "", ErrPaymentTypeUnavailable
}

func setCorrelation(order *models.Order, p PaymentCorrelation) {
	if p.SessionID != "" {
		order.SessionID = &p.SessionID
	}
	if p.PaymentIntentID != "" {
		order.PaymentIntentID = &p.PaymentIntentID
	}
	if p.CustomerID != "" {
		order.CustomerID = &p.CustomerID
	}
}

// priorIntentOrder returns the result of the order already holding intentID,
// or nil when the intent is unused.
func (c *Checkout) priorIntentOrder(ctx context.Context, intentID string) (*CheckoutResult, error) {
	prior, err := c.Orders.FindByPaymentIntent(ctx, intentID)
	if errors.Is(err, models.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("payment intent already used, returning existing order",
		zap.String("order_id", prior.ID), zap.String("correlation_key", intentID))
	return &CheckoutResult{OrderID: prior.ID, Status: prior.Status, ExpireAt: prior.ExpireAt}, nil
}

// verifyIntent runs before anything is written so a failed intent leaves no
// order behind.
func (c *Checkout) verifyIntent(ctx context.Context, intentID string) error {
	provider, err := c.Providers.Get(payments.NameStripeIntent)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	status, err := provider.GetStatus(ctx, intentID)
	if err != nil {
		logger.Warn("payment intent lookup failed",
			zap.String("correlation_key", intentID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if status.State != payments.Success {
		logger.Info("payment intent not succeeded",
			zap.String("correlation_key", intentID), zap.String("provider_status", status.Raw))
		return ErrPaymentNotSucceeded
	}
	return nil
}

// resolveUser returns the acting user and whether it is a guest account that
// needs activation. An unverified account with the same email is reused.
func (c *Checkout) resolveUser(ctx context.Context, req CheckoutRequest, path paymentPath, now time.Time) (*models.User, bool, error) {
	if req.Guest == nil {
		user, err := c.Users.FindByID(ctx, req.Draft.UserID)
		if err != nil {
			return nil, false, err
		}
		if user.Blacklisted {
			return nil, false, ErrUserBlacklisted
		}
		return user, false, nil
	}

	var expireAt *time.Time
	if path == pathDeferred {
		t := now.Add(c.cfg.UserGraceWindow)
		expireAt = &t
	}

	g := req.Guest
	email := strings.ToLower(strings.TrimSpace(g.Email))
	existing, err := c.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Verified {
			return nil, false, ErrEmailTaken
		}
		if existing.Blacklisted {
			return nil, false, ErrUserBlacklisted
		}
		// An account without expiry already owns a kept order and stays
		// permanent; a provisional one follows the new order's path.
		if existing.ExpireAt != nil {
			if expireAt != nil {
				err = c.Users.SetExpiry(ctx, existing.ID, *expireAt)
			} else {
				err = c.Users.ClearExpiry(ctx, existing.ID)
			}
			if err != nil {
				return nil, false, err
			}
			existing.ExpireAt = expireAt
		}
		return existing, true, nil
	case !errors.Is(err, models.ErrUserNotFound):
		return nil, false, err
	}

	user := &models.User{
		Email:       email,
		Username:    email,
		FirstName:   g.FirstName,
		LastName:    g.LastName,
		Phone:       g.Phone,
		Role:        models.RoleUser,
		Verified:    false,
		Blacklisted: false,
		ExpireAt:    expireAt,
	}
	if g.Password != "" {
		hash, err := utils.HashPassword(g.Password)
		if err != nil {
			return nil, false, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}
	if err := c.Users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create guest user: %w", err)
	}
	return user, true, nil
}

func (c *Checkout) sendActivation(ctx context.Context, user *models.User, settings models.Settings) {
	token, err := utils.GenerateActivationToken(c.cfg.JWTSecret, user.ID, c.cfg.ActivationTTL)
	if err != nil {
		logger.Error("failed to generate activation token", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	err = c.Mailer.Send(ctx, utils.Message{
		Template: utils.TemplateVerifyEmail,
		To:       user.Email,
		Locale:   settings.Language,
		Data: utils.VerifyEmailData{
			Name:            user.FullName(),
			VerificationURL: c.cfg.FrontendURL + "/auth/verify-email?token=" + url.QueryEscape(token),
			LogoURL:         logoURL,
		},
	})
	if err != nil {
		logger.Warn("failed to send activation email", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (c *Checkout) discard(ctx context.Context, orderID string) {
	if err := c.Orders.Delete(ctx, orderID); err != nil {
		logger.Error("failed to discard order", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (c *Checkout) publish(ctx context.Context, e events.Event) {
	if err := c.Events.Publish(ctx, e); err != nil {
		logger.Warn("failed to publish event",
			zap.String("event_type", e.Type), zap.String("order_id", e.OrderID), zap.Error(err))
	}
}

// CreateSession opens a payment session with the named provider for the
// client to complete before calling Checkout.
func (c *Checkout) CreateSession(ctx context.Context, providerName string, req payments.SessionRequest) (*payments.Session, error) {
	provider, err := c.Providers.Get(providerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Currency == "" || req.Locale == "" {
		settings, err := c.Settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		if req.Currency == "" {
			req.Currency = settings.Currency
		}
		if req.Locale == "" {
			req.Locale = utils.ResolveLocale(settings.Language)
		}
	}
	session, err := provider.CreateSession(ctx, req)
	if err != nil {
		logger.Warn("failed to create payment session",
			zap.String("provider", providerName), zap.String("order_ref", req.OrderRef), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return session, nil
}
