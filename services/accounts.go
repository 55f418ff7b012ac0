package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/utils"
)

type Accounts struct {
	users     UserStore
	jwtSecret string
}

func NewAccounts(users UserStore, jwtSecret string) *Accounts {
	return &Accounts{users: users, jwtSecret: jwtSecret}
}

// Login checks the credentials and returns a signed session token.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := a.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if user.Password == "" || utils.ComparePasswords(user.Password, password) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Verified {
		return "", nil, ErrAccountNotActivated
	}
	if user.Blacklisted {
		return "", nil, ErrUserBlacklisted
	}

	token, err := utils.GenerateLoginToken(a.jwtSecret, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (a *Accounts) Activate(ctx context.Context, activationToken string) error {
	userID, err := utils.ParseActivationToken(a.jwtSecret, activationToken)
	if err != nil {
		return ErrInvalidActivationToken
	}
	err = a.users.Verify(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return ErrInvalidActivationToken
	}
	return err
}
