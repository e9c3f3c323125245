package purchases

import (
	"net/http"

	"ticketing/internal/shared/middleware"
	"ticketing/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchaseRequest struct {
	TicketID string `json:"ticket_id" binding:"required,uuid"`
}

type PurchaseResponse struct {
	PaymentID   string `json:"payment_id"`
	ClientToken string `json:"client_token"`
}

type Controller struct {
	coordinator *Coordinator
}

func NewController(coordinator *Coordinator) *Controller {
	return &Controller{coordinator: coordinator}
}

// BeginPurchase godoc
// @Summary Reserve a ticket and start payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PurchaseRequest true "Ticket to buy"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Failure 502 {object} response.StandardApiResponse
// @Router /payments [post]
func (c *Controller) BeginPurchase(ctx *gin.Context) {
	buyerID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, err.Error())
		return
	}

	var req PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.coordinator.BeginPurchase(ctx.Request.Context(), buyerID, uuid.MustParse(req.TicketID))
	if err != nil {
		response.RespondError(ctx, "Failed to start purchase", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Ticket reserved, awaiting payment", PurchaseResponse{
		PaymentID:   result.PaymentID.String(),
		ClientToken: result.ClientToken,
	}, nil)
}
