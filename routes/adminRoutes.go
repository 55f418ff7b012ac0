package routes

import (
	"github.com/Kariqs/amexan-checkout/controllers"
	"github.com/Kariqs/amexan-checkout/middlewares"
	"github.com/gin-gonic/gin"
)

func AdminRoutes(server *gin.Engine, deps Deps) {
	requireAdmin := []gin.HandlerFunc{middlewares.RequireAuth(deps.JWTSecret), middlewares.RequireAdmin()}

	notifications := server.Group("/notifications", requireAdmin...)
	{
		notifications.GET("", controllers.ListNotifications(deps.Notifications))
		notifications.POST("/read", controllers.MarkNotificationsRead(deps.Notifications))
	}

	admin := server.Group("/admin", requireAdmin...)
	{
		admin.PATCH("/payment-types/:id", controllers.UpdatePaymentType(deps.PaymentTypes))
		admin.PATCH("/delivery-types/:id", controllers.UpdateDeliveryType(deps.DeliveryTypes))
	}
}
