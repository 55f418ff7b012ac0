package routes

import (
	"github.com/Kariqs/amexan-checkout/controllers"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, deps Deps) {
	auth := server.Group("/auth")
	{
		auth.POST("/login", controllers.Login(deps.Accounts))
		auth.POST("/verify-email/:activationToken", controllers.ActivateAccount(deps.Accounts))
	}
}
