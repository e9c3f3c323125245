package response

import (
	"net/http"

	"ticketing/internal/shared/apperrors"
	"ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// StatusCode maps an application error to the HTTP status it is reported with.
func StatusCode(err error) int {
	switch apperrors.Kind(err) {
	case apperrors.ErrInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrConflict:
		return http.StatusConflict
	case apperrors.ErrProvider:
		return http.StatusBadGateway
	case apperrors.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err using the standard envelope. Server-side failures
// are logged in full; storage details are not echoed to clients.
func RespondError(c *gin.Context, message string, err error) {
	code := StatusCode(err)
	detail := err.Error()
	if code >= http.StatusInternalServerError {
		logger.GetDefault().LogHTTPError(c, err, code)
		if code != http.StatusBadGateway {
			detail = http.StatusText(code)
		}
	}
	RespondJSON(c, "error", code, message, nil, detail)
}
