package payments

import (
	"ticketing/internal/shared/config"
	"ticketing/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	payments := rg.Group("/payments")
	{
		payments.GET("/publishable-key", controller.GetPublishableKey) // GET /api/v1/payments/publishable-key
	}

	owned := rg.Group("/payments")
	owned.Use(middleware.JWTAuth(cfg))
	{
		owned.GET("/:id", controller.GetPayment) // GET /api/v1/payments/:id
	}
}
