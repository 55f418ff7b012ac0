package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindAdmin returns the oldest admin account.
func (r *UserRepository) FindAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleAdmin).
		Order("created_at").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ClearExpiry promotes a provisional user to a permanent one.
func (r *UserRepository) ClearExpiry(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("expire_at", nil).Error
}

func (r *UserRepository) SetExpiry(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("expire_at", at).Error
}

func (r *UserRepository) Verify(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// DeleteProvisional deletes the user only while it is unverified, still
// carries an expiry and owns no order. A guest reused across checkouts keeps
// the account as long as any of its orders remains.
func (r *UserRepository) DeleteProvisional(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND verified = ? AND expire_at IS NOT NULL", id, false).
		Where("id NOT IN (?)", r.db.Model(&models.Order{}).Select("user_id")).
		Delete(&models.User{})
	return res.RowsAffected > 0, res.Error
}

// DeleteLapsed removes unverified provisional users past their expiry that no
// longer own any order.
func (r *UserRepository) DeleteLapsed(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("verified = ? AND expire_at IS NOT NULL AND expire_at < ?", false, now).
		Where("id NOT IN (?)", r.db.Model(&models.Order{}).Select("user_id")).
		Delete(&models.User{})
	return res.RowsAffected, res.Error
}
