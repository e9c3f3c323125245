package tickets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticketing/internal/shared/apperrors"
	"ticketing/internal/shared/utils/response"
	"ticketing/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateTickets(ctx context.Context, req CreateTicketsRequest) (*CreateTicketsResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*CreateTicketsResponse)
	return resp, args.Error(1)
}

func (m *MockService) GetTicket(ctx context.Context, id string) (*TicketResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*TicketResponse)
	return resp, args.Error(1)
}

func (m *MockService) FindAvailable(ctx context.Context, query AvailableTicketQuery) (*TicketResponse, error) {
	args := m.Called(ctx, query)
	resp, _ := args.Get(0).(*TicketResponse)
	return resp, args.Error(1)
}

func (m *MockService) GetEventSummary(ctx context.Context, eventID string) (*EventSummaryResponse, error) {
	args := m.Called(ctx, eventID)
	resp, _ := args.Get(0).(*EventSummaryResponse)
	return resp, args.Error(1)
}

func setupTestRouter() (*gin.Engine, *MockService) {
	gin.SetMode(gin.TestMode)
	RegisterValidations()

	svc := &MockService{}
	controller := NewController(svc)

	router := gin.New()
	router.POST("/tickets", controller.CreateTickets)
	router.GET("/tickets/available", controller.FindAvailable)
	router.GET("/tickets/events/:eventId/summary", controller.GetEventSummary)
	router.GET("/tickets/:id", controller.GetTicket)
	return router, svc
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.StandardApiResponse {
	t.Helper()
	var body response.StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestController_CreateTickets(t *testing.T) {
	router, svc := setupTestRouter()
	eventID := uuid.New().String()

	expected := CreateTicketsRequest{EventID: eventID, Price: money.FromCents(5000), Type: "STANDARD", Quantity: 10}
	svc.On("CreateTickets", mock.Anything, expected).Return(&CreateTicketsResponse{EventID: eventID, Quantity: 10}, nil)

	body := []byte(`{"event_id":"` + eventID + `","price":"50.00","type":"STANDARD","quantity":10}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tickets", bytes.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", decode(t, w).Status)
	svc.AssertExpectations(t)
}

func TestController_CreateTickets_Validation(t *testing.T) {
	router, svc := setupTestRouter()
	eventID := uuid.New().String()

	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"event_id":"` + eventID + `","price":"50.00","type":"BALCONY","quantity":1}`},
		{"zero quantity", `{"event_id":"` + eventID + `","price":"50.00","type":"VIP","quantity":0}`},
		{"sub-cent price", `{"event_id":"` + eventID + `","price":"50.001","type":"VIP","quantity":1}`},
		{"bad event id", `{"event_id":"abc","price":"50.00","type":"VIP","quantity":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tickets", bytes.NewReader([]byte(tt.body))))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	svc.AssertNotCalled(t, "CreateTickets", mock.Anything, mock.Anything)
}

func TestController_GetTicket_NotFound(t *testing.T) {
	router, svc := setupTestRouter()
	id := uuid.New().String()
	svc.On("GetTicket", mock.Anything, id).Return(nil, ErrTicketNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestController_FindAvailable(t *testing.T) {
	router, svc := setupTestRouter()
	eventID := uuid.New().String()
	query := AvailableTicketQuery{EventID: eventID, Price: "50.00", Type: "VIP"}

	svc.On("FindAvailable", mock.Anything, query).Return(&TicketResponse{ID: uuid.New().String(), Status: StatusAvailable}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/available?event_id="+eventID+"&price=50.00&type=VIP", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	t.Run("missing type", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/available?event_id="+eventID+"&price=50.00", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestController_GetEventSummary_StoreDown(t *testing.T) {
	router, svc := setupTestRouter()
	eventID := uuid.New().String()
	svc.On("GetEventSummary", mock.Anything, eventID).Return(nil, apperrors.Store("summarize tickets", assert.AnError))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/events/"+eventID+"/summary", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
