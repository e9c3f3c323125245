package payments

import (
	"net/http"

	"ticketing/internal/shared/middleware"
	"ticketing/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetPayment godoc
// @Summary Get one of your payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /payments/{id} [get]
func (c *Controller) GetPayment(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, err.Error())
		return
	}

	payment, err := c.service.GetPayment(ctx.Request.Context(), ctx.Param("id"), Requester{
		UserID:  userID,
		IsAdmin: middleware.IsAdmin(ctx),
	})
	if err != nil {
		response.RespondError(ctx, "Failed to get payment", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment retrieved successfully", payment, nil)
}

// GetPublishableKey godoc
// @Summary Provider publishable key for client-side confirmation
// @Tags payments
// @Produce json
// @Success 200 {object} response.StandardApiResponse
// @Router /payments/publishable-key [get]
func (c *Controller) GetPublishableKey(ctx *gin.Context) {
	response.RespondJSON(ctx, "success", http.StatusOK, "Publishable key retrieved successfully", c.service.GetPublishableKey(), nil)
}
