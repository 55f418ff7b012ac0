package services

import (
	"context"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/Kariqs/amexan-checkout/services")

type OrderStore interface {
	CreateWithItems(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	FindProvisionalByCorrelation(ctx context.Context, provider, key string) (*models.Order, error)
	FindSweepable(ctx context.Context, id, key string) (*models.Order, error)
	ConfirmPaid(ctx context.Context, id string) (bool, error)
	MarkPaid(ctx context.Context, id string) error
	DeleteProvisional(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	ListLapsed(ctx context.Context, now time.Time, limit int) ([]models.Order, error)
	DeleteOrphanItems(ctx context.Context, now time.Time) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	ClearExpiry(ctx context.Context, id string) error
	SetExpiry(ctx context.Context, id string, at time.Time) error
	Verify(ctx context.Context, id string) error
	DeleteProvisional(ctx context.Context, id string) (bool, error)
	DeleteLapsed(ctx context.Context, now time.Time) (int64, error)
}

type InventoryLedger interface {
	DecrementAndCheckSoldOut(ctx context.Context, productID string, qty int) error
	FindMany(ctx context.Context, ids []string) ([]models.Product, error)
}

type NotificationStore interface {
	Append(ctx context.Context, recipientID, message string, orderID *string) error
}

type PaymentTypeLookup interface {
	FindByID(ctx context.Context, id string) (*models.PaymentType, error)
}

type DeliveryTypeLookup interface {
	FindByID(ctx context.Context, id string) (*models.DeliveryType, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (models.Settings, error)
}

// SettledCache short-circuits duplicate reconciliation callbacks. The
// database guard stays authoritative; the cache only saves provider calls.
type SettledCache interface {
	IsSettled(ctx context.Context, provider, correlationKey string) (bool, error)
	MarkSettled(ctx context.Context, provider, correlationKey, outcome string) error
}

type ReceiptStore interface {
	Store(ctx context.Context, orderID, html string) (string, error)
}
