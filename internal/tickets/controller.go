package tickets

import (
	"net/http"

	"ticketing/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateTickets godoc
// @Summary Create tickets for an event
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTicketsRequest true "Ticket batch"
// @Success 201 {object} response.StandardApiResponse
// @Router /tickets [post]
func (c *Controller) CreateTickets(ctx *gin.Context) {
	var req CreateTicketsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	created, err := c.service.CreateTickets(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, "Failed to create tickets", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Tickets created successfully", created, nil)
}

// GetTicket godoc
// @Summary Get a ticket
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /tickets/{id} [get]
func (c *Controller) GetTicket(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Ticket ID is required", nil, "missing ticket ID")
		return
	}

	ticket, err := c.service.GetTicket(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, "Failed to get ticket", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket retrieved successfully", ticket, nil)
}

// FindAvailable godoc
// @Summary Find an available ticket
// @Tags tickets
// @Produce json
// @Param event_id query string true "Event ID"
// @Param price query string true "Price, e.g. 50.00"
// @Param type query string true "STANDARD or VIP"
// @Success 200 {object} response.StandardApiResponse
// @Router /tickets/available [get]
func (c *Controller) FindAvailable(ctx *gin.Context) {
	var query AvailableTicketQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	ticket, err := c.service.FindAvailable(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, "No ticket available", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket available", ticket, nil)
}

// GetEventSummary godoc
// @Summary Ticket availability per tier for an event
// @Tags tickets
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /tickets/events/{eventId}/summary [get]
func (c *Controller) GetEventSummary(ctx *gin.Context) {
	summary, err := c.service.GetEventSummary(ctx.Request.Context(), ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, "Failed to get ticket summary", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket summary retrieved successfully", summary, nil)
}
