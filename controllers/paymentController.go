package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/payments"
	"github.com/Kariqs/amexan-checkout/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckPayment reconciles the order correlated with a provider key.
func CheckPayment(reconciler *services.Reconciler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reconcile(ctx, reconciler, ctx.Param("provider"), ctx.Param("correlationKey"))
	}
}

// CheckPayPalPayment is the PayPal return callback. The provider order id is
// the correlation key; the order id is only checked for shape.
func CheckPayPalPayment(reconciler *services.Reconciler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, err := uuid.Parse(ctx.Param("orderId")); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}
		reconcile(ctx, reconciler, payments.NamePayPal, ctx.Param("providerOrderId"))
	}
}

func reconcile(ctx *gin.Context, reconciler *services.Reconciler, provider, correlationKey string) {
	out, err := reconciler.Reconcile(ctx.Request.Context(), provider, correlationKey)
	if err != nil {
		sendServiceError(ctx, err)
		return
	}

	switch out.Kind {
	case services.OutcomeSuccess:
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgPaymentConfirmed, "orderId": out.OrderID})
	case services.OutcomeFailed:
		logger.Info("payment check reported failure",
			zap.String("provider", provider),
			zap.String("correlation_key", correlationKey),
			zap.String("provider_status", out.ProviderStatus))
		sendErrorResponse(ctx, http.StatusBadRequest, msgPaymentNotSucceeded)
	default:
		ctx.Status(http.StatusNoContent)
	}
}
