package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-checkout/middlewares"
	"github.com/Kariqs/amexan-checkout/payments"
	"github.com/Kariqs/amexan-checkout/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Checkout places an order. Signed in buyers always order as themselves;
// anonymous buyers must send guest details.
func Checkout(checkout *services.Checkout) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req services.CheckoutRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}

		if userID := middlewares.UserID(ctx); userID != "" {
			req.Guest = nil
			req.Draft.UserID = userID
		} else if req.Guest == nil {
			sendErrorResponse(ctx, http.StatusUnauthorized, msgUnauthorized)
			return
		} else {
			req.Draft.UserID = ""
		}

		res, err := checkout.Checkout(ctx.Request.Context(), req)
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message":  msgOrderPlaced,
			"orderId":  res.OrderID,
			"status":   res.Status,
			"expireAt": res.ExpireAt,
		})
	}
}

type sessionBody struct {
	Provider    string          `json:"provider" binding:"required"`
	OrderRef    string          `json:"orderRef" binding:"required,max=64"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	Name        string          `json:"name" binding:"max=255"`
	Description string          `json:"description" binding:"max=500"`
	CustomerID  string          `json:"customerId"`
}

// CreatePaymentSession opens a provider session the client completes before
// calling Checkout with the returned correlation key.
func CreatePaymentSession(checkout *services.Checkout) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body sessionBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}

		session, err := checkout.CreateSession(ctx.Request.Context(), body.Provider, payments.SessionRequest{
			OrderRef:    body.OrderRef,
			Amount:      body.Amount,
			Currency:    body.Currency,
			Name:        body.Name,
			Description: body.Description,
			CustomerID:  body.CustomerID,
		})
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"correlationKey":    session.CorrelationKey,
			"clientSecretOrUrl": session.ClientSecretOrURL,
			"customerId":        session.CustomerID,
		})
	}
}
