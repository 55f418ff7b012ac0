package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/amexan-checkout/events"
	"github.com/Kariqs/amexan-checkout/metrics"
	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/payments"
	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/Kariqs/amexan-checkout/services"
	"github.com/Kariqs/amexan-checkout/testutil"
	"github.com/Kariqs/amexan-checkout/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeProvider struct {
	name string

	mu       sync.Mutex
	statuses map[string]payments.Status
	err      error
	calls    int
}

func newFakeProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, statuses: map[string]payments.Status{}}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CreateSession(_ context.Context, req payments.SessionRequest) (*payments.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &payments.Session{CorrelationKey: "sess_" + req.OrderRef, ClientSecretOrURL: "https://pay.test/" + req.OrderRef}, nil
}

func (f *fakeProvider) GetStatus(_ context.Context, key string) (payments.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return payments.Status{}, f.err
	}
	if st, ok := f.statuses[key]; ok {
		return st, nil
	}
	return payments.Status{State: payments.Pending, Raw: "open"}, nil
}

func (f *fakeProvider) set(key string, state payments.State, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[key] = payments.Status{State: state, Raw: raw}
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []utils.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg utils.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) templates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.Template)
	}
	return out
}

func (m *recordingMailer) find(template string) (utils.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.sent {
		if msg.Template == template {
			return msg, true
		}
	}
	return utils.Message{}, false
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB

	orders        *repositories.OrderRepository
	users         *repositories.UserRepository
	inventory     *repositories.InventoryRepository
	notifications *repositories.NotificationRepository
	paymentTypes  *repositories.PaymentTypeRepository
	deliveryTypes *repositories.DeliveryTypeRepository

	stripeCheckout *fakeProvider
	stripeIntent   *fakeProvider
	paypal         *fakeProvider
	mailer         *recordingMailer
	events         *recordingEvents

	checkout   *services.Checkout
	reconciler *services.Reconciler
	sweeper    *services.Sweeper
	metrics    *metrics.Metrics
	admin      *models.User
}

type harnessOptions struct {
	settled services.SettledCache
	// ledger wraps the inventory ledger the confirmer decrements through.
	ledger func(services.InventoryLedger) services.InventoryLedger
	// reconcileUsers wraps the user store the reconciler sees.
	reconcileUsers func(services.UserStore) services.UserStore
}

type harnessOption func(*harnessOptions)

func withSettledCache(c services.SettledCache) harnessOption {
	return func(o *harnessOptions) { o.settled = c }
}

func withLedger(wrap func(services.InventoryLedger) services.InventoryLedger) harnessOption {
	return func(o *harnessOptions) { o.ledger = wrap }
}

func withReconcileUsers(wrap func(services.UserStore) services.UserStore) harnessOption {
	return func(o *harnessOptions) { o.reconcileUsers = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{
		t:              t,
		ctx:            context.Background(),
		db:             db,
		orders:         repositories.NewOrderRepository(db),
		users:          repositories.NewUserRepository(db),
		inventory:      repositories.NewInventoryRepository(db),
		notifications:  repositories.NewNotificationRepository(db),
		paymentTypes:   repositories.NewPaymentTypeRepository(db),
		deliveryTypes:  repositories.NewDeliveryTypeRepository(db),
		stripeCheckout: newFakeProvider(payments.NameStripeCheckout),
		stripeIntent:   newFakeProvider(payments.NameStripeIntent),
		paypal:         newFakeProvider(payments.NamePayPal),
		mailer:         &recordingMailer{},
		events:         &recordingEvents{},
	}
	var o harnessOptions
	for _, opt := range opts {
		opt(&o)
	}
	settings := repositories.NewSettingsRepository(db)
	registry := payments.NewRegistry(h.stripeCheckout, h.stripeIntent, h.paypal)
	m := metrics.New(prometheus.NewRegistry())
	h.metrics = m

	var ledger services.InventoryLedger = h.inventory
	if o.ledger != nil {
		ledger = o.ledger(ledger)
	}
	var reconcileUsers services.UserStore = h.users
	if o.reconcileUsers != nil {
		reconcileUsers = o.reconcileUsers(reconcileUsers)
	}

	confirmer := services.NewConfirmer(services.ConfirmerDeps{
		Inventory:     ledger,
		Notifications: h.notifications,
		Users:         h.users,
		PaymentTypes:  h.paymentTypes,
		DeliveryTypes: h.deliveryTypes,
		Mailer:        h.mailer,
		Metrics:       m,
	})
	h.checkout = services.NewCheckout(services.CheckoutDeps{
		Orders:        h.orders,
		Users:         h.users,
		Inventory:     h.inventory,
		PaymentTypes:  h.paymentTypes,
		DeliveryTypes: h.deliveryTypes,
		Settings:      settings,
		Providers:     registry,
		Confirmer:     confirmer,
		Mailer:        h.mailer,
		Events:        h.events,
		Metrics:       m,
	}, services.CheckoutConfig{
		OrderGraceWindow: 30 * time.Minute,
		UserGraceWindow:  time.Hour,
		JWTSecret:        testSecret,
		FrontendURL:      "https://shop.test",
	})

	h.reconciler = services.NewReconciler(services.ReconcilerDeps{
		Orders:    h.orders,
		Users:     reconcileUsers,
		Inventory: h.inventory,
		Settings:  settings,
		Providers: registry,
		Confirmer: confirmer,
		Settled:   o.settled,
		Events:    h.events,
		Metrics:   m,
	})
	h.sweeper = services.NewSweeper(services.SweeperDeps{
		Orders:  h.orders,
		Users:   h.users,
		Events:  h.events,
		Metrics: m,
	})

	h.admin = &models.User{Email: "admin@amexan.store", Role: models.RoleAdmin, Verified: true}
	require.NoError(t, h.users.Create(h.ctx, h.admin))
	return h
}

func (h *harness) product(qty int) *models.Product {
	h.t.Helper()
	p := &models.Product{Name: "Baobab oil", Price: decimal.RequireFromString("10.00"), Quantity: qty}
	require.NoError(h.t, h.db.Create(p).Error)
	return p
}

func (h *harness) paymentType(name string) string {
	h.t.Helper()
	pt, err := h.paymentTypes.FindEnabledByName(h.ctx, name)
	require.NoError(h.t, err)
	return pt.ID
}

func (h *harness) deliveryType() string {
	h.t.Helper()
	dt, err := h.deliveryTypes.FindEnabledByName(h.ctx, "standard")
	require.NoError(h.t, err)
	return dt.ID
}

func (h *harness) stock(id string) *models.Product {
	h.t.Helper()
	var p models.Product
	require.NoError(h.t, h.db.First(&p, "id = ?", id).Error)
	return &p
}

func (h *harness) count(model any) int64 {
	h.t.Helper()
	var n int64
	require.NoError(h.t, h.db.Model(model).Count(&n).Error)
	return n
}

func (h *harness) guestRequest(paymentType string, items map[string]int, payment services.PaymentCorrelation) services.CheckoutRequest {
	req := services.CheckoutRequest{
		Guest: &services.GuestUser{Email: "buyer@example.com", FirstName: "Amina", LastName: "Otieno"},
		Draft: services.OrderDraft{
			PaymentTypeID:  h.paymentType(paymentType),
			DeliveryTypeID: h.deliveryType(),
			Total:          decimal.NewFromInt(10),
		},
		Payment: payment,
	}
	for id, qty := range items {
		req.Draft.Items = append(req.Draft.Items, services.DraftItem{ProductID: id, Quantity: qty})
	}
	return req
}

func ptr[T any](v T) *T { return &v }

// missingStockLedger reports every product as gone when it is decremented.
type missingStockLedger struct {
	services.InventoryLedger
}

func (missingStockLedger) DecrementAndCheckSoldOut(context.Context, string, int) error {
	return models.ErrProductNotFound
}

// promotionFailingUsers fails every expiry clear, like a dropped connection.
type promotionFailingUsers struct {
	services.UserStore
}

func (promotionFailingUsers) ClearExpiry(context.Context, string) error {
	return errors.New("connection reset by peer")
}
