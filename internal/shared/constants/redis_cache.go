package constants

import (
	"time"
)

// Redis Cache Configuration
// Pattern: ticketing:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_REALTIME_SHORT = 30 * time.Second // 30 seconds - for live availability counts
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "ticketing"
)

// ================== TICKETS MODULE ==================

const (
	CACHE_KEY_TICKET_SUMMARY = CACHE_PREFIX + ":tickets:summary:event:" // + event-id
)

const (
	TTL_TICKET_SUMMARY = TTL_REALTIME_SHORT
)

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + client-ip:limit-type
)

// ================== HELPER FUNCTIONS ==================

func BuildTicketSummaryKey(eventID string) string {
	return CACHE_KEY_TICKET_SUMMARY + eventID
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return CACHE_KEY_RATE_LIMIT + clientIP + ":" + limitType
}
