package routes

import (
	"github.com/Kariqs/amexan-checkout/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, deps Deps) {
	server.DELETE("/order/temp/:orderId/:correlationKey", controllers.DeleteTempOrder(deps.Sweeper))
}
