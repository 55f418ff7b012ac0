package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the inventory view of a catalog entry.
type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:0"`
	SoldOut   bool            `json:"soldOut" gorm:"not null;default:false"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
