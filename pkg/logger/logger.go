package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewWithHandler builds a logger on top of an existing handler.
func NewWithHandler(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogTicketsCreated logs a bulk inventory insert
func (l *Logger) LogTicketsCreated(ctx context.Context, eventID, ticketType string, quantity int) {
	l.Logger.InfoContext(ctx,
		"Tickets Created",
		slog.String("event_id", eventID),
		slog.String("type", ticketType),
		slog.Int("quantity", quantity),
	)
}

// LogTicketReserved logs a successful reservation with its payment
func (l *Logger) LogTicketReserved(ctx context.Context, ticketID, userID, paymentID string) {
	l.Logger.InfoContext(ctx,
		"Ticket Reserved",
		slog.String("ticket_id", ticketID),
		slog.String("user_id", userID),
		slog.String("payment_id", paymentID),
	)
}

// LogReservationReleased logs the compensating release of a reservation
func (l *Logger) LogReservationReleased(ctx context.Context, ticketID, userID, reason string) {
	l.Logger.WarnContext(ctx,
		"Reservation Released",
		slog.String("ticket_id", ticketID),
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// LogTicketSettled logs a ticket moving to SOLD
func (l *Logger) LogTicketSettled(ctx context.Context, ticketID, paymentID, providerRef string) {
	l.Logger.InfoContext(ctx,
		"Ticket Settled",
		slog.String("ticket_id", ticketID),
		slog.String("payment_id", paymentID),
		slog.String("provider_ref", providerRef),
	)
}

// LogDeliveryFailure logs a failed invoice hand-off. The settlement it belongs
// to is already committed.
func (l *Logger) LogDeliveryFailure(ctx context.Context, ticketID, paymentID string, err error) {
	l.Logger.ErrorContext(ctx,
		"Invoice Delivery Failed",
		slog.String("ticket_id", ticketID),
		slog.String("payment_id", paymentID),
		slog.String("error", err.Error()),
	)
}

// LogAnomaly logs a state the system should never reach but tolerates
func (l *Logger) LogAnomaly(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.Logger.LogAttrs(ctx, slog.LevelWarn, "Anomaly: "+msg, attrs...)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogSecurityEvent logs a rejected inbound call that must never be processed
func (l *Logger) LogSecurityEvent(ctx context.Context, event, detail string) {
	l.Logger.WarnContext(ctx,
		"Security Event",
		slog.String("event", event),
		slog.String("detail", detail),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
