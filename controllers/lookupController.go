package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListPaymentTypes returns the payment methods buyers can choose from.
func ListPaymentTypes(paymentTypes *repositories.PaymentTypeRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		all, err := paymentTypes.List(ctx.Request.Context())
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		enabled := make([]models.PaymentType, 0, len(all))
		for _, pt := range all {
			if pt.Enabled {
				enabled = append(enabled, pt)
			}
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"paymentTypes": enabled})
	}
}

func ListDeliveryTypes(deliveryTypes *repositories.DeliveryTypeRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		all, err := deliveryTypes.List(ctx.Request.Context())
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		enabled := make([]models.DeliveryType, 0, len(all))
		for _, dt := range all {
			if dt.Enabled {
				enabled = append(enabled, dt)
			}
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"deliveryTypes": enabled})
	}
}

type paymentTypeUpdate struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func UpdatePaymentType(paymentTypes *repositories.PaymentTypeRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body paymentTypeUpdate
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}
		if err := paymentTypes.SetEnabled(ctx.Request.Context(), ctx.Param("id"), *body.Enabled); err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgUpdated})
	}
}

type deliveryTypeUpdate struct {
	Enabled *bool            `json:"enabled"`
	Price   *decimal.Decimal `json:"price"`
}

func UpdateDeliveryType(deliveryTypes *repositories.DeliveryTypeRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body deliveryTypeUpdate
		if err := ctx.ShouldBindJSON(&body); err != nil || (body.Enabled == nil && body.Price == nil) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}
		if body.Price != nil && body.Price.IsNegative() {
			sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
			return
		}

		id := ctx.Param("id")
		if body.Enabled != nil {
			if err := deliveryTypes.SetEnabled(ctx.Request.Context(), id, *body.Enabled); err != nil {
				sendServiceError(ctx, err)
				return
			}
		}
		if body.Price != nil {
			if err := deliveryTypes.SetPrice(ctx.Request.Context(), id, *body.Price); err != nil {
				sendServiceError(ctx, err)
				return
			}
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgUpdated})
	}
}
