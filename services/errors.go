package services

import (
	"errors"

	"github.com/Kariqs/amexan-checkout/models"
)

// Validation and business rule failures. Callers map these to 400.
var (
	ErrValidation              = errors.New("validation failed")
	ErrNoCorrelationKey        = errors.New("no payment correlation key supplied")
	ErrPaymentNotSucceeded     = errors.New("payment did not succeed")
	ErrPaymentTypeUnavailable  = errors.New("payment type is not available")
	ErrDeliveryTypeUnavailable = errors.New("delivery type is not available")
	ErrUserBlacklisted         = errors.New("user is blacklisted")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrAccountNotActivated     = errors.New("account not activated")
	ErrInvalidActivationToken  = errors.New("invalid or expired activation link")
	ErrUserNotFound            = models.ErrUserNotFound
	ErrEmailTaken              = models.ErrEmailTaken
)

// Retryable and hard failures. Callers map these to 500.
var (
	// ErrProviderUnavailable means the provider could not be asked; nothing
	// was mutated and the caller should retry.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	// ErrProductMissing and ErrUserMissing are raised after payment was
	// confirmed. The order is kept for manual review.
	ErrProductMissing = errors.New("order references a missing product")
	ErrUserMissing    = errors.New("order references a missing user")
)
