package settlement

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticketing/internal/provider"
	"ticketing/internal/tickets"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestController_Webhook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	payment := f.reserve(t)

	router := gin.New()
	SetupWebhookRoutes(router, NewController(f.coordinator))

	post := func(payload []byte, signature string) int {
		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payload))
		if signature != "" {
			req.Header.Set(SignatureHeader, signature)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	succeeded := f.gateway.NewEvent(provider.EventPaymentSucceeded, payment.ProviderRef)
	unknown := f.gateway.NewEvent(provider.EventPaymentSucceeded, "pi_unknown")
	unreadable := []byte(`{"type":"payment.succeeded","data":{}}`)

	assert.Equal(t, http.StatusBadRequest, post(succeeded, ""), "unsigned")
	assert.Equal(t, http.StatusBadRequest, post(succeeded, "00ff"), "bad signature")
	assert.Equal(t, http.StatusOK, post(unknown, f.gateway.Sign(unknown)), "unknown intent is acknowledged")
	assert.Equal(t, http.StatusOK, post(unreadable, f.gateway.Sign(unreadable)), "signed but unparseable is acknowledged")
	assert.Equal(t, http.StatusBadRequest, post(unreadable, ""), "unsigned garbage is still rejected")
	assert.Equal(t, http.StatusOK, post(succeeded, f.gateway.Sign(succeeded)))
	assert.Equal(t, http.StatusOK, post(succeeded, f.gateway.Sign(succeeded)), "redelivery")

	f.coordinator.Wait()
	assert.Equal(t, tickets.StatusSold, f.ticketStatus(t, payment.TicketID))
	assert.Len(t, f.deliverer.Calls(), 1)

	oversized := bytes.Repeat([]byte("a"), maxPayloadBytes+1)
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(oversized, f.gateway.Sign(oversized)))
}
