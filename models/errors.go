package models

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrLookupNotFound  = errors.New("lookup entry not found")
	ErrEmailTaken      = errors.New("email is already taken")
)
