package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Append stores a notification and bumps the recipient's unread counter in
// the same transaction, so the counter never drifts from the unread rows.
func (r *NotificationRepository) Append(ctx context.Context, recipientID, message string, orderID *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n := models.Notification{
			RecipientID: recipientID,
			Message:     message,
			OrderID:     orderID,
		}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		return incrementCounter(tx, recipientID)
	})
}

func (r *NotificationRepository) IncrementCounter(ctx context.Context, recipientID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return incrementCounter(tx, recipientID)
	})
}

func incrementCounter(tx *gorm.DB, recipientID string) error {
	bump := func() (int64, error) {
		res := tx.Model(&models.NotificationCounter{}).
			Where("recipient_id = ?", recipientID).
			Updates(map[string]any{
				"count":      gorm.Expr("count + ?", 1),
				"updated_at": time.Now(),
			})
		return res.RowsAffected, res.Error
	}

	n, err := bump()
	if err != nil || n > 0 {
		return err
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.NotificationCounter{RecipientID: recipientID, Count: 1})
	if res.Error != nil || res.RowsAffected > 0 {
		return res.Error
	}

	// another writer created the row between our update and insert
	_, err = bump()
	return err
}

func (r *NotificationRepository) List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// Counter returns the unread count, zero when the recipient never received
// a notification.
func (r *NotificationRepository) Counter(ctx context.Context, recipientID string) (int, error) {
	var counter models.NotificationCounter
	err := r.db.WithContext(ctx).First(&counter, "recipient_id = ?", recipientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Notification{}).
			Where("recipient_id = ? AND is_read = ?", recipientID, false).
			Update("is_read", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.NotificationCounter{}).
			Where("recipient_id = ?", recipientID).
			Updates(map[string]any{"count": 0, "updated_at": time.Now()}).Error
	})
}
