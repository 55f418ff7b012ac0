package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"gorm.io/gorm"
)

// sold_out is assigned before quantity because MySQL evaluates SET clauses
// left to right against the already updated row.
const decrementSQL = `UPDATE products SET
	sold_out = CASE WHEN quantity <= ? THEN TRUE ELSE sold_out END,
	quantity = CASE WHEN quantity > ? THEN quantity - ? ELSE 0 END,
	updated_at = ?
WHERE id = ?`

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// DecrementAndCheckSoldOut subtracts qty from the product's stock in a single
// statement, clamping at zero and flagging the product sold out when the
// stock runs out.
func (r *InventoryRepository) DecrementAndCheckSoldOut(ctx context.Context, productID string, qty int) error {
	res := r.db.WithContext(ctx).Exec(decrementSQL, qty, qty, qty, time.Now(), productID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

func (r *InventoryRepository) Find(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindMany returns the products that exist among ids, in no particular order.
func (r *InventoryRepository) FindMany(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}
