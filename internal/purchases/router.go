package purchases

import (
	"ticketing/internal/shared/config"
	"ticketing/internal/shared/middleware"
	"ticketing/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupPurchaseRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	purchases := rg.Group("/payments")
	purchases.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(users.RoleUser, users.RoleAdmin))
	{
		purchases.POST("", controller.BeginPurchase) // POST /api/v1/payments
	}
}
