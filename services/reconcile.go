package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/amexan-checkout/events"
	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/metrics"
	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/payments"
	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeNotFound covers every no-op: duplicate callbacks, swept orders
	// and payments the provider still reports as pending.
	OutcomeNotFound OutcomeKind = "not_found"
	OutcomeFailed   OutcomeKind = "failed"
)

type Outcome struct {
	Kind    OutcomeKind `json:"outcome"`
	OrderID string      `json:"orderId,omitempty"`
	// ProviderStatus is the provider's raw status for failed payments.
	ProviderStatus string `json:"providerStatus,omitempty"`
}

type ReconcilerDeps struct {
	Orders    OrderStore
	Users     UserStore
	Inventory InventoryLedger
	Settings  SettingsStore
	Providers payments.Registry
	Confirmer *Confirmer
	// Settled and Events are optional.
	Settled SettledCache
	Events  events.Publisher
	Metrics *metrics.Metrics
}

// Reconciler applies a provider's payment status to the provisional order it
// belongs to, exactly once. The same algorithm serves every provider.
type Reconciler struct {
	ReconcilerDeps
}

func NewReconciler(d ReconcilerDeps) *Reconciler {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	return &Reconciler{ReconcilerDeps: d}
}

func (r *Reconciler) Reconcile(ctx context.Context, providerName, correlationKey string) (out Outcome, err error) {
	ctx, span := tracer.Start(ctx, "reconcile")
	span.SetAttributes(
		attribute.String("reconcile.provider", providerName),
		attribute.String("reconcile.correlation_key", correlationKey),
	)
	defer func() {
		label := string(out.Kind)
		if err != nil {
			label = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if r.Metrics != nil {
			r.Metrics.Reconciliations.WithLabelValues(providerName, label).Inc()
		}
		span.End()
	}()

	if correlationKey == "" {
		return Outcome{}, fmt.Errorf("%w: correlation key is required", ErrValidation)
	}
	provider, err := r.Providers.Get(providerName)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if r.Settled != nil {
		settled, err := r.Settled.IsSettled(ctx, providerName, correlationKey)
		if err != nil {
			logger.Warn("settled key lookup failed", zap.String("correlation_key", correlationKey), zap.Error(err))
		} else if settled {
			return Outcome{Kind: OutcomeNotFound}, nil
		}
	}

	start := time.Now()
	status, err := provider.GetStatus(ctx, correlationKey)
	if r.Metrics != nil {
		r.Metrics.ProviderLatency.WithLabelValues(providerName).Observe(float64(time.Since(start).Milliseconds()))
	}
	if err != nil {
		logger.Warn("provider status lookup failed",
			zap.String("provider", providerName),
			zap.String("correlation_key", correlationKey),
			zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	order, err := r.Orders.FindProvisionalByCorrelation(ctx, providerName, correlationKey)
	if errors.Is(err, models.ErrOrderNotFound) {
		return Outcome{Kind: OutcomeNotFound}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	switch status.State {
	case payments.Success:
		return r.settle(ctx, provider.Name(), correlationKey, order)
	case payments.Failure:
		return r.discard(ctx, provider.Name(), correlationKey, order, status.Raw)
	}
	return Outcome{Kind: OutcomeNotFound, OrderID: order.ID}, nil
}

func (r *Reconciler) settle(ctx context.Context, providerName, correlationKey string, order *models.Order) (Outcome, error) {
	log := logger.L().With(
		zap.String("order_id", order.ID),
		zap.String("provider", providerName),
		zap.String("correlation_key", correlationKey),
	)

	claimed, err := r.Orders.ConfirmPaid(ctx, order.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to confirm order %s: %w", order.ID, err)
	}
	if !claimed {
		// a concurrent callback or the sweeper got there first
		return Outcome{Kind: OutcomeNotFound}, nil
	}
	order.Status = models.OrderPaid
	order.ExpireAt = nil

	if err := r.checkProducts(ctx, order); err != nil {
		r.reportHardFailure(order, correlationKey, err)
		return Outcome{}, err
	}
	if err := r.Confirmer.DecrementInventory(ctx, order.OrderItems); err != nil {
		r.reportHardFailure(order, correlationKey, err)
		return Outcome{}, err
	}

	buyer, err := r.Users.FindByID(ctx, order.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		err = fmt.Errorf("%w: %s", ErrUserMissing, order.UserID)
		r.reportHardFailure(order, correlationKey, err)
		return Outcome{}, err
	}
	if err != nil {
		r.reportHardFailure(order, correlationKey, err)
		return Outcome{}, err
	}
	if err := r.Users.ClearExpiry(ctx, buyer.ID); err != nil {
		err = fmt.Errorf("failed to promote user %s: %w", buyer.ID, err)
		r.reportHardFailure(order, correlationKey, err)
		return Outcome{}, err
	}
	buyer.ExpireAt = nil

	settings, err := r.Settings.Get(ctx)
	if err != nil {
		log.Error("failed to load settings, skipping confirmation emails", zap.Error(err))
	} else {
		r.Confirmer.Deliver(ctx, buyer, order, settings)
	}

	r.markSettled(ctx, providerName, correlationKey, string(OutcomeSuccess))
	r.publish(ctx, events.Event{
		Type:           events.OrderPaid,
		OrderID:        order.ID,
		Provider:       providerName,
		CorrelationKey: correlationKey,
	})
	log.Info("order paid")
	return Outcome{Kind: OutcomeSuccess, OrderID: order.ID}, nil
}

// checkProducts verifies every item still points at an existing product
// before any stock is touched. An order without items cannot be confirmed.
func (r *Reconciler) checkProducts(ctx context.Context, order *models.Order) error {
	if len(order.OrderItems) == 0 {
		return fmt.Errorf("%w: order has no items", ErrProductMissing)
	}
	ids := make([]string, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		ids = append(ids, item.ProductID)
	}
	products, err := r.Inventory.FindMany(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]struct{}, len(products))
	for _, p := range products {
		found[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", ErrProductMissing, id)
		}
	}
	return nil
}

func (r *Reconciler) discard(ctx context.Context, providerName, correlationKey string, order *models.Order, raw string) (Outcome, error) {
	deleted, err := r.Orders.DeleteProvisional(ctx, order.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to delete order %s: %w", order.ID, err)
	}
	if !deleted {
		return Outcome{Kind: OutcomeNotFound}, nil
	}

	r.markSettled(ctx, providerName, correlationKey, string(OutcomeFailed))
	r.publish(ctx, events.Event{
		Type:           events.OrderPaymentFailed,
		OrderID:        order.ID,
		Provider:       providerName,
		CorrelationKey: correlationKey,
		ProviderStatus: raw,
	})
	logger.Info("payment failed, order deleted",
		zap.String("order_id", order.ID),
		zap.String("correlation_key", correlationKey),
		zap.String("provider_status", raw))
	return Outcome{Kind: OutcomeFailed, OrderID: order.ID, ProviderStatus: raw}, nil
}

// reportHardFailure flags a paid order that could not be completed. Once the
// order is claimed a retry sees nothing to do, so every error after the claim
// lands here. The order is kept and needs manual review.
func (r *Reconciler) reportHardFailure(order *models.Order, correlationKey string, err error) {
	if r.Metrics != nil {
		r.Metrics.ManualReview.Inc()
	}
	logger.Error("paid order needs manual review",
		zap.String("order_id", order.ID),
		zap.String("correlation_key", correlationKey),
		zap.Error(err))
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("order_id", order.ID)
		scope.SetTag("correlation_key", correlationKey)
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}

func (r *Reconciler) markSettled(ctx context.Context, providerName, correlationKey, outcome string) {
	if r.Settled == nil {
		return
	}
	if err := r.Settled.MarkSettled(ctx, providerName, correlationKey, outcome); err != nil {
		logger.Warn("failed to record settled key", zap.String("correlation_key", correlationKey), zap.Error(err))
	}
}

func (r *Reconciler) publish(ctx context.Context, e events.Event) {
	if err := r.Events.Publish(ctx, e); err != nil {
		logger.Warn("failed to publish event",
			zap.String("event_type", e.Type), zap.String("order_id", e.OrderID), zap.Error(err))
	}
}
