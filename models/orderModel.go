package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPaid      OrderStatus = "Paid"
	OrderShipped   OrderStatus = "Shipped"
	OrderCancelled OrderStatus = "Cancelled"
)

// Order is one purchase attempt. A non-nil ExpireAt marks it provisional: it is
// not a completed sale and is deleted when the window lapses.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"userId" gorm:"type:varchar(36);index;not null"`
	OrderItems      []OrderItem     `json:"orderItems" gorm:"foreignKey:OrderID"`
	PaymentTypeID   string          `json:"paymentTypeId" gorm:"type:varchar(36);not null"`
	DeliveryTypeID  string          `json:"deliveryTypeId" gorm:"type:varchar(36);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(8);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);index;not null"`
	Provider        string          `json:"provider,omitempty" gorm:"type:varchar(32)"`
	SessionID       *string         `json:"sessionId,omitempty" gorm:"type:varchar(255);index"`
	PaymentIntentID *string         `json:"paymentIntentId,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	CustomerID      *string         `json:"customerId,omitempty" gorm:"type:varchar(255)"`
	ExpireAt        *time.Time      `json:"expireAt,omitempty" gorm:"index"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Provisional reports whether the order still waits for payment confirmation.
func (o *Order) Provisional() bool { return o.ExpireAt != nil }

// CorrelationKey returns whichever provider key the order was created with.
func (o *Order) CorrelationKey() string {
	switch {
	case o.SessionID != nil:
		return *o.SessionID
	case o.PaymentIntentID != nil:
		return *o.PaymentIntentID
	}
	return ""
}

type OrderItem struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string     `json:"orderId" gorm:"type:varchar(36);index;not null"`
	ProductID string     `json:"productId" gorm:"type:varchar(36);index;not null"`
	Quantity  int        `json:"quantity" gorm:"not null"`
	ExpireAt  *time.Time `json:"expireAt,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
