package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to Amexan Checkout API ❤️. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/login" - Access user account
- POST "/auth/verify-email/:activationToken" - Activate user account

CHECKOUT
- GET "/payment-types" - List available payment methods
- GET "/delivery-types" - List available delivery methods
- POST "/checkout" - Place an order
- POST "/payment/create-session" - Open a payment session
- POST "/payment/check/:provider/:correlationKey" - Confirm a payment
- POST "/payment/paypal/check/:orderId/:providerOrderId" - Confirm a PayPal payment
- DELETE "/order/temp/:orderId/:correlationKey" - Release an abandoned order

ADMIN
- GET "/notifications" - List notifications
- POST "/notifications/read" - Mark notifications as read
- PATCH "/admin/payment-types/:id" - Enable or disable a payment method
- PATCH "/admin/delivery-types/:id" - Update a delivery method`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
