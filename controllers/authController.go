package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Standard response messages
	msgInvalidInput            = "invalid input"
	msgInvalidCredentials      = "invalid email or password"
	msgAccountNotActivated     = "Account not activated, check your email to activate email."
	msgInternalServerError     = "Internal server error"
	msgInvalidActivationLink   = "Invalid or expired activation link"
	msgActivationSuccess       = "account has been activated successfully."
	msgUnauthorized            = "Authorization token required"
	msgEmailTaken              = "An account with this email already exists, please log in."
	msgUserNotFound            = "user does not exist"
	msgAccountRestricted       = "This account cannot place orders. Contact support."
	msgNoCorrelationKey        = "No payment reference was supplied."
	msgPaymentNotSucceeded     = "Payment was not successful."
	msgPaymentTypeUnavailable  = "The selected payment method is not available."
	msgDeliveryTypeUnavailable = "The selected delivery method is not available."
	msgPaymentServiceDown      = "Payment service is unavailable, try again shortly."
	msgOrderPlaced             = "Order placed successfully."
	msgPaymentConfirmed        = "Payment confirmed."
	msgOrderRemoved            = "Order removed."
	msgUpdated                 = "Updated successfully."
	msgNotFound                = "not found"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// sendServiceError maps a service error to its status code. Buyer facing
// messages stay generic; details only go to the log.
func sendServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
	case errors.Is(err, services.ErrNoCorrelationKey):
		sendErrorResponse(ctx, http.StatusBadRequest, msgNoCorrelationKey)
	case errors.Is(err, services.ErrPaymentNotSucceeded):
		sendErrorResponse(ctx, http.StatusBadRequest, msgPaymentNotSucceeded)
	case errors.Is(err, services.ErrPaymentTypeUnavailable):
		sendErrorResponse(ctx, http.StatusBadRequest, msgPaymentTypeUnavailable)
	case errors.Is(err, services.ErrDeliveryTypeUnavailable):
		sendErrorResponse(ctx, http.StatusBadRequest, msgDeliveryTypeUnavailable)
	case errors.Is(err, services.ErrUserBlacklisted):
		sendErrorResponse(ctx, http.StatusBadRequest, msgAccountRestricted)
	case errors.Is(err, services.ErrEmailTaken):
		sendErrorResponse(ctx, http.StatusBadRequest, msgEmailTaken)
	case errors.Is(err, services.ErrUserNotFound):
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
	case errors.Is(err, services.ErrAccountNotActivated):
		sendErrorResponse(ctx, http.StatusBadRequest, msgAccountNotActivated)
	case errors.Is(err, services.ErrInvalidActivationToken):
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidActivationLink)
	case errors.Is(err, models.ErrLookupNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, msgNotFound)
	case errors.Is(err, services.ErrProviderUnavailable):
		logger.Warn("payment provider unavailable", zap.String("path", ctx.FullPath()), zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgPaymentServiceDown)
	default:
		logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
	}
}

// Login handles user authentication
func Login(accounts *services.Accounts) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var loginData models.LoginData
		if err := ctx.ShouldBindJSON(&loginData); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}

		token, _, err := accounts.Login(ctx.Request.Context(), loginData.Email, loginData.Password)
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"token": token})
	}
}

// ActivateAccount verifies the account named by an activation token. Guest
// accounts created at checkout are activated the same way.
func ActivateAccount(accounts *services.Accounts) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := accounts.Activate(ctx.Request.Context(), ctx.Param("activationToken")); err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgActivationSuccess})
	}
}
