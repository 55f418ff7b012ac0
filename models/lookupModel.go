package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Symbolic payment type names. Checkout branches on these, never on client input.
const (
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentBankTransfer   = "bank_transfer"
	PaymentCard           = "card"
	PaymentPayPal         = "paypal"
)

type PaymentType struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	Label     string    `json:"label"`
	Enabled   bool      `json:"enabled" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *PaymentType) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Offline reports whether the payment type settles outside any provider.
func (p *PaymentType) Offline() bool {
	return p.Name == PaymentCashOnDelivery || p.Name == PaymentBankTransfer
}

type DeliveryType struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	Label     string          `json:"label"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	Enabled   bool            `json:"enabled" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (d *DeliveryType) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
