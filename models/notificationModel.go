package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecipientID string    `json:"recipientId" gorm:"type:varchar(36);index;not null"`
	Message     string    `json:"message" gorm:"not null"`
	OrderID     *string   `json:"orderId,omitempty" gorm:"type:varchar(36)"`
	Read        bool      `json:"read" gorm:"column:is_read;index;not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationCounter holds the number of unread notifications of one recipient.
type NotificationCounter struct {
	RecipientID string    `json:"recipientId" gorm:"primaryKey;type:varchar(36)"`
	Count       int       `json:"count" gorm:"not null;default:0"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
