package purchases

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketing/internal/shared/middleware"
	"ticketing/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_BeginPurchase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	ticket := f.seed(t, 1)[0]
	controller := NewController(f.coordinator(time.Second))

	serve := func(user, body string) *httptest.ResponseRecorder {
		router := gin.New()
		router.POST("/payments", func(c *gin.Context) {
			if user != "" {
				c.Set(middleware.ContextUserID, user)
			}
			c.Next()
		}, controller.BeginPurchase)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader([]byte(body))))
		return w
	}

	body := `{"ticket_id":"` + ticket.ID.String() + `"}`

	w := serve(uuid.New().String(), body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp response.StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["payment_id"])
	assert.NotEmpty(t, data["client_token"])

	assert.Equal(t, http.StatusConflict, serve(uuid.New().String(), body).Code)
	assert.Equal(t, http.StatusNotFound, serve(uuid.New().String(), `{"ticket_id":"`+uuid.New().String()+`"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(uuid.New().String(), `{"ticket_id":"nope"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, serve("", body).Code)
}
