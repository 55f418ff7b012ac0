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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sweepBatchSize = 100

type SweeperDeps struct {
	Orders  OrderStore
	Users   UserStore
	Events  events.Publisher
	Metrics *metrics.Metrics
}

// Sweeper deletes provisional orders, and the provisional users that own
// them, once their payment window is abandoned or lapsed.
type Sweeper struct {
	SweeperDeps
	now func() time.Time
}

func NewSweeper(d SweeperDeps) *Sweeper {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	return &Sweeper{SweeperDeps: d, now: time.Now}
}

// SweepExpiredOrder is called by a client that abandoned its payment flow.
// An order that was already confirmed or swept is not an error.
func (s *Sweeper) SweepExpiredOrder(ctx context.Context, orderID, correlationKey string) error {
	ctx, span := tracer.Start(ctx, "sweep.order")
	defer span.End()

	if _, err := uuid.Parse(orderID); err != nil {
		return fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	if correlationKey == "" {
		return fmt.Errorf("%w: correlation key is required", ErrValidation)
	}

	order, err := s.Orders.FindSweepable(ctx, orderID, correlationKey)
	if errors.Is(err, models.ErrOrderNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	deleted, err := s.deleteOrder(ctx, order.ID, correlationKey)
	if err != nil || !deleted {
		return err
	}
	// the owner goes only once it has no order left
	return s.deleteProvisionalOwner(ctx, order.UserID)
}

func (s *Sweeper) deleteProvisionalOwner(ctx context.Context, userID string) error {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.Verified || user.ExpireAt == nil {
		return nil
	}
	if _, err := s.Users.DeleteProvisional(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete provisional user %s: %w", user.ID, err)
	}
	return nil
}

func (s *Sweeper) deleteOrder(ctx context.Context, orderID, correlationKey string) (bool, error) {
	deleted, err := s.Orders.DeleteProvisional(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}
	if !deleted {
		return false, nil
	}
	if s.Metrics != nil {
		s.Metrics.Swept.Inc()
	}
	if err := s.Events.Publish(ctx, events.Event{
		Type:           events.OrderExpired,
		OrderID:        orderID,
		CorrelationKey: correlationKey,
	}); err != nil {
		logger.Warn("failed to publish event", zap.String("order_id", orderID), zap.Error(err))
	}
	return true, nil
}

type SweepReport struct {
	Orders int
	Items  int64
	Users  int64
}

// SweepLapsed deletes every provisional order whose window ended before now,
// then orphaned items and lapsed provisional users.
func (s *Sweeper) SweepLapsed(ctx context.Context, now time.Time) (SweepReport, error) {
	ctx, span := tracer.Start(ctx, "sweep.lapsed")
	defer span.End()

	var report SweepReport
	for {
		orders, err := s.Orders.ListLapsed(ctx, now, sweepBatchSize)
		if err != nil {
			return report, err
		}
		for _, order := range orders {
			deleted, err := s.Orders.DeleteProvisional(ctx, order.ID)
			if err != nil {
				return report, fmt.Errorf("failed to delete order %s: %w", order.ID, err)
			}
			if !deleted {
				continue
			}
			report.Orders++
			if s.Metrics != nil {
				s.Metrics.Swept.Inc()
			}
			if err := s.Events.Publish(ctx, events.Event{
				Type:           events.OrderExpired,
				OrderID:        order.ID,
				Provider:       order.Provider,
				CorrelationKey: order.CorrelationKey(),
			}); err != nil {
				logger.Warn("failed to publish event", zap.String("order_id", order.ID), zap.Error(err))
			}
		}
		if len(orders) < sweepBatchSize {
			break
		}
	}

	items, err := s.Orders.DeleteOrphanItems(ctx, now)
	if err != nil {
		return report, err
	}
	report.Items = items

	users, err := s.Users.DeleteLapsed(ctx, now)
	if err != nil {
		return report, err
	}
	report.Users = users
	return report, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.SweepLapsed(ctx, s.now())
			if err != nil {
				logger.Error("sweep failed", zap.Error(err))
				continue
			}
			if report.Orders > 0 || report.Users > 0 || report.Items > 0 {
				logger.Info("sweep finished",
					zap.Int("orders", report.Orders),
					zap.Int64("items", report.Items),
					zap.Int64("users", report.Users))
			}
		}
	}
}
