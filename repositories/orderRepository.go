package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems inserts the items first and then the order header that
// references them. Items inherit the order's ExpireAt.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range order.OrderItems {
			order.OrderItems[i].OrderID = order.ID
			order.OrderItems[i].ExpireAt = order.ExpireAt
		}
		if len(order.OrderItems) > 0 {
			if err := tx.Create(&order.OrderItems).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Create(order).Error
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("OrderItems").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByPaymentIntent returns the order a direct payment intent was already
// attached to, if any.
func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "payment_intent_id = ?", intentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindProvisionalByCorrelation only matches orders that still carry an expiry,
// so settled or swept orders are invisible to reconciliation.
func (r *OrderRepository) FindProvisionalByCorrelation(ctx context.Context, provider, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("provider = ?", provider).
		Where("(session_id = ? OR payment_intent_id = ?)", key, key).
		Where("expire_at IS NOT NULL").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindSweepable(ctx context.Context, id, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("(session_id = ? OR payment_intent_id = ?)", key, key).
		Where("status = ? AND expire_at IS NOT NULL", models.OrderPending).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmPaid clears the provisional marker on the order and its items and
// marks it paid. It reports false when the order was no longer provisional,
// meaning a concurrent caller already settled or deleted it.
func (r *OrderRepository) ConfirmPaid(ctx context.Context, id string) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND expire_at IS NOT NULL", id).
			Updates(map[string]any{
				"expire_at":  nil,
				"status":     models.OrderPaid,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ?", id).
			Update("expire_at", nil).Error; err != nil {
			return err
		}
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": models.OrderPaid, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// DeleteProvisional deletes the order only while it is still provisional,
// then its items. It reports whether this call performed the delete.
func (r *OrderRepository) DeleteProvisional(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND expire_at IS NOT NULL", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// Delete removes an order and its items unconditionally.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Order{}).Error
	})
}

func (r *OrderRepository) ListLapsed(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND expire_at IS NOT NULL AND expire_at < ?", models.OrderPending, now).
		Order("expire_at").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// DeleteOrphanItems removes lapsed items whose order header no longer exists.
func (r *OrderRepository) DeleteOrphanItems(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expire_at IS NOT NULL AND expire_at < ?", now).
		Where("order_id NOT IN (?)", r.db.Model(&models.Order{}).Select("id")).
		Delete(&models.OrderItem{})
	return res.RowsAffected, res.Error
}
