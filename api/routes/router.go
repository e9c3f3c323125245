// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "ticketing/docs"
	"ticketing/internal/payments"
	"ticketing/internal/provider"
	"ticketing/internal/purchases"
	"ticketing/internal/settlement"
	"ticketing/internal/shared/config"
	"ticketing/internal/shared/database"
	"ticketing/internal/tickets"
	"ticketing/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	gateway   provider.Gateway
	deliverer settlement.Deliverer

	cacheService cache.Service
	ticketRepo   tickets.Repository
	paymentRepo  payments.Repository
	settlement   *settlement.Coordinator
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, gateway provider.Gateway, deliverer settlement.Deliverer) *Router {
	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.GetRedisClient())
	}

	// Coordinators move tickets through the store; every change drops the
	// cached event summary.
	ticketRepo := tickets.NewInvalidatingRepository(tickets.NewRepository(db.GetPostgreSQL(), cfg.Provider.Currency), cacheService)

	return &Router{
		config:       cfg,
		db:           db,
		gateway:      gateway,
		deliverer:    deliverer,
		cacheService: cacheService,
		ticketRepo:   ticketRepo,
		paymentRepo:  payments.NewRepository(db.GetPostgreSQL()),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Provider callbacks live outside the versioned API
	r.setupWebhookRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupTicketRoutes(api)
		r.setupPaymentRoutes(api)
		r.setupPurchaseRoutes(api)
	}
}

// WaitForDeliveries blocks until invoice hand-offs started by settlement
// have returned.
func (r *Router) WaitForDeliveries() {
	if r.settlement != nil {
		r.settlement.Wait()
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketing",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketing",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"provider":    r.config.Provider.Name,
			"timestamp":   time.Now(),
		})
	})
}

// setupTicketRoutes configures inventory routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketService := tickets.NewService(r.ticketRepo, r.cacheService)
	ticketController := tickets.NewController(ticketService)

	tickets.SetupTicketRoutes(rg, ticketController, r.config)
}

// setupPaymentRoutes configures payment lookups
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentService := payments.NewService(r.paymentRepo, r.gateway)
	paymentController := payments.NewController(paymentService)

	payments.SetupPaymentRoutes(rg, paymentController, r.config)
}

// setupPurchaseRoutes configures checkout
func (r *Router) setupPurchaseRoutes(rg *gin.RouterGroup) {
	coordinator := purchases.NewCoordinator(r.ticketRepo, r.paymentRepo, r.gateway, r.config.Provider.Timeout)
	purchaseController := purchases.NewController(coordinator)

	purchases.SetupPurchaseRoutes(rg, purchaseController, r.config)
}

// setupWebhookRoutes configures the provider callback
func (r *Router) setupWebhookRoutes(engine *gin.Engine) {
	r.settlement = settlement.NewCoordinator(r.ticketRepo, r.paymentRepo, r.gateway, r.deliverer, r.config.Delivery.Timeout)
	webhookController := settlement.NewController(r.settlement)

	settlement.SetupWebhookRoutes(engine, webhookController)
}
