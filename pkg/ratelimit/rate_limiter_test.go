package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLimiter(t *testing.T, cfg *Config) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, cfg)
	rl.now = func() time.Time { return fixedNow }
	return rl, mock
}

func testConfig() *Config {
	return &Config{
		Enabled:          true,
		WindowDuration:   time.Minute,
		DefaultRequests:  60,
		PurchaseRequests: 2,
		WebhookRequests:  1000,
		WhitelistedIPs:   []string{"10.0.0.1"},
	}
}

func expectWindow(mock redismock.ClientMock, key string, limit int) *redismock.ExpectedCmd {
	return mock.ExpectEval(slidingWindowScript, []string{key},
		fixedNow.Add(-time.Minute).UnixMilli(),
		fixedNow.UnixMilli(),
		limit,
		60,
		fixedNow.UnixNano(),
	)
}

func TestIsAllowed_WithinLimit(t *testing.T) {
	rl, mock := newTestLimiter(t, testConfig())
	expectWindow(mock, "ticketing:ratelimit:1.2.3.4:purchase", 2).SetVal([]interface{}{int64(1), int64(1)})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypePurchase)

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 1, res.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_OverLimit(t *testing.T) {
	rl, mock := newTestLimiter(t, testConfig())
	expectWindow(mock, "ticketing:ratelimit:1.2.3.4:purchase", 2).SetVal([]interface{}{int64(3), int64(0)})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypePurchase)

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestIsAllowed_WhitelistedSkipsRedis(t *testing.T) {
	rl, mock := newTestLimiter(t, testConfig())

	res, err := rl.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypePurchase)

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		method, path string
		want         RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/metrics", RateLimitTypeHealth},
		{http.MethodPost, "/payments/webhook", RateLimitTypeWebhook},
		{http.MethodPost, "/api/v1/payments", RateLimitTypePurchase},
		{http.MethodGet, "/api/v1/payments/:id", RateLimitTypeDefault},
		{http.MethodPost, "/api/v1/tickets", RateLimitTypeAdmin},
		{http.MethodGet, "/api/v1/tickets/available", RateLimitTypePublic},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path), tt.method+" "+tt.path)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, mock := newTestLimiter(t, testConfig())
	expectWindow(mock, "ticketing:ratelimit:1.2.3.4:purchase", 2).SetVal([]interface{}{int64(3), int64(0)})

	engine := gin.New()
	engine.Use(Middleware(rl))
	engine.POST("/api/v1/payments", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
}
