package routes

import (
	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/Kariqs/amexan-checkout/services"
	"github.com/gin-gonic/gin"
)

// Deps holds everything the route groups hand to their controllers.
type Deps struct {
	JWTSecret         string
	CheckoutRateLimit float64
	CheckoutBurst     int

	Checkout      *services.Checkout
	Reconciler    *services.Reconciler
	Sweeper       *services.Sweeper
	Accounts      *services.Accounts
	Notifications *repositories.NotificationRepository
	PaymentTypes  *repositories.PaymentTypeRepository
	DeliveryTypes *repositories.DeliveryTypeRepository
}

// Register mounts every route group on server.
func Register(server *gin.Engine, deps Deps) {
	DefaultRoutes(server)
	AuthRoutes(server, deps)
	CheckoutRoutes(server, deps)
	OrderRoutes(server, deps)
	AdminRoutes(server, deps)
}
