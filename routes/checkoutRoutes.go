package routes

import (
	"github.com/Kariqs/amexan-checkout/controllers"
	"github.com/Kariqs/amexan-checkout/middlewares"
	"github.com/gin-gonic/gin"
)

func CheckoutRoutes(server *gin.Engine, deps Deps) {
	limit := middlewares.RateLimit(deps.CheckoutRateLimit, deps.CheckoutBurst)

	server.GET("/payment-types", controllers.ListPaymentTypes(deps.PaymentTypes))
	server.GET("/delivery-types", controllers.ListDeliveryTypes(deps.DeliveryTypes))
	server.POST("/checkout", limit, middlewares.OptionalAuth(deps.JWTSecret), controllers.Checkout(deps.Checkout))

	// provider callbacks share a few source IPs and are not limited
	payment := server.Group("/payment")
	{
		payment.POST("/create-session", limit, controllers.CreatePaymentSession(deps.Checkout))
		payment.POST("/check/:provider/:correlationKey", controllers.CheckPayment(deps.Reconciler))
		payment.POST("/paypal/check/:orderId/:providerOrderId", controllers.CheckPayPalPayment(deps.Reconciler))
	}
}
