package tickets

import (
	"ticketing/internal/shared/config"
	"ticketing/internal/shared/middleware"
	"ticketing/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	RegisterValidations()

	// PUBLIC TICKET LOOKUPS

	tickets := rg.Group("/tickets")
	{
		tickets.GET("/available", controller.FindAvailable)                 // GET /api/v1/tickets/available?event_id=&price=&type=
		tickets.GET("/events/:eventId/summary", controller.GetEventSummary) // GET /api/v1/tickets/events/:eventId/summary
		tickets.GET("/:id", controller.GetTicket)                           // GET /api/v1/tickets/:id
	}

	// INVENTORY SETUP

	inventory := rg.Group("/tickets")
	inventory.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(users.RoleAdmin, users.RoleOrganizer))
	{
		inventory.POST("", controller.CreateTickets) // POST /api/v1/tickets
	}
}
