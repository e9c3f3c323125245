package settlement

import (
	"errors"
	"io"
	"net/http"

	"ticketing/internal/shared/apperrors"
	"ticketing/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

const (
	SignatureHeader = "Stripe-Signature"
	maxPayloadBytes = 64 << 10
)

type Controller struct {
	coordinator *Coordinator
}

func NewController(coordinator *Coordinator) *Controller {
	return &Controller{coordinator: coordinator}
}

// Webhook godoc
// @Summary Payment provider callback
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Provider signature"
// @Success 200 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Router /payments/webhook [post]
func (c *Controller) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxPayloadBytes+1))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to read body", nil, err.Error())
		return
	}
	if len(payload) > maxPayloadBytes {
		response.RespondJSON(ctx, "error", http.StatusRequestEntityTooLarge, "Payload too large", nil, nil)
		return
	}

	err = c.coordinator.HandleProviderCallback(ctx.Request.Context(), Callback{
		Payload:   payload,
		Signature: ctx.GetHeader(SignatureHeader),
	})

	switch {
	case err == nil:
		response.RespondJSON(ctx, "success", http.StatusOK, "Event received", gin.H{"received": true}, nil)
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrInvalidInput):
		// Signed but unusable. A redelivery carries the same bytes, so it is
		// acknowledged; already logged and counted
		response.RespondJSON(ctx, "success", http.StatusOK, "Event received", gin.H{"received": true}, nil)
	case errors.Is(err, apperrors.ErrUnauthenticated):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid signature", nil, nil)
	default:
		response.RespondError(ctx, "Failed to process event", err)
	}
}
