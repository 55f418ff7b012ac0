package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the checkout-relevant part of an account. Guests created at checkout
// start unverified; a non-nil ExpireAt means the account is provisional.
type User struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email       string     `json:"email" gorm:"type:varchar(255);index;not null"`
	Username    string     `json:"username"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone"`
	Password    string     `json:"-"`
	Role        string     `json:"role" gorm:"type:varchar(16);not null;default:user"`
	Verified    bool       `json:"verified" gorm:"not null;default:false"`
	Blacklisted bool       `json:"blacklisted" gorm:"not null;default:false"`
	ExpireAt    *time.Time `json:"expireAt,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
