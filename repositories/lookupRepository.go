package repositories

import (
	"context"
	"errors"

	"github.com/Kariqs/amexan-checkout/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentTypeRepository struct {
	db *gorm.DB
}

func NewPaymentTypeRepository(db *gorm.DB) *PaymentTypeRepository {
	return &PaymentTypeRepository{db: db}
}

func (r *PaymentTypeRepository) FindByID(ctx context.Context, id string) (*models.PaymentType, error) {
	var pt models.PaymentType
	if err := r.db.WithContext(ctx).First(&pt, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &pt, nil
}

func (r *PaymentTypeRepository) FindEnabledByName(ctx context.Context, name string) (*models.PaymentType, error) {
	var pt models.PaymentType
	if err := r.db.WithContext(ctx).First(&pt, "name = ? AND enabled = ?", name, true).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &pt, nil
}

func (r *PaymentTypeRepository) List(ctx context.Context) ([]models.PaymentType, error) {
	var types []models.PaymentType
	err := r.db.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}

func (r *PaymentTypeRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return updateLookup(r.db.WithContext(ctx).Model(&models.PaymentType{}).Where("id = ?", id),
		map[string]any{"enabled": enabled})
}

type DeliveryTypeRepository struct {
	db *gorm.DB
}

func NewDeliveryTypeRepository(db *gorm.DB) *DeliveryTypeRepository {
	return &DeliveryTypeRepository{db: db}
}

func (r *DeliveryTypeRepository) FindByID(ctx context.Context, id string) (*models.DeliveryType, error) {
	var dt models.DeliveryType
	if err := r.db.WithContext(ctx).First(&dt, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &dt, nil
}

func (r *DeliveryTypeRepository) FindEnabledByName(ctx context.Context, name string) (*models.DeliveryType, error) {
	var dt models.DeliveryType
	if err := r.db.WithContext(ctx).First(&dt, "name = ? AND enabled = ?", name, true).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &dt, nil
}

func (r *DeliveryTypeRepository) List(ctx context.Context) ([]models.DeliveryType, error) {
	var types []models.DeliveryType
	err := r.db.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}

func (r *DeliveryTypeRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return updateLookup(r.db.WithContext(ctx).Model(&models.DeliveryType{}).Where("id = ?", id),
		map[string]any{"enabled": enabled})
}

func (r *DeliveryTypeRepository) SetPrice(ctx context.Context, id string, price decimal.Decimal) error {
	return updateLookup(r.db.WithContext(ctx).Model(&models.DeliveryType{}).Where("id = ?", id),
		map[string]any{"price": price})
}

func updateLookup(q *gorm.DB, values map[string]any) error {
	res := q.Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrLookupNotFound
	}
	return nil
}

func lookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrLookupNotFound
	}
	return err
}
