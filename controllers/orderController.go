package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-checkout/services"
	"github.com/gin-gonic/gin"
)

// DeleteTempOrder lets a client that abandoned its payment flow release the
// provisional order. Orders already confirmed or swept are left alone.
func DeleteTempOrder(sweeper *services.Sweeper) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		err := sweeper.SweepExpiredOrder(ctx.Request.Context(), ctx.Param("orderId"), ctx.Param("correlationKey"))
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgOrderRemoved})
	}
}
