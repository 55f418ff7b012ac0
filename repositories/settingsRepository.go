package repositories

import (
	"context"
	"errors"

	"github.com/Kariqs/amexan-checkout/models"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the shop settings, falling back to defaults when the row has
// not been created yet.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := r.db.WithContext(ctx).Order("id").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	return settings, err
}
