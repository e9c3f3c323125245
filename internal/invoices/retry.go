package invoices

import (
	"context"
	"errors"
	"time"

	"ticketing/internal/shared/apperrors"
)

const maxBackoff = 5 * time.Minute

// withRetry runs fn up to maxRetries+1 times, doubling the delay after every
// failure. Not-found and invalid-input errors are returned immediately.
func withRetry(ctx context.Context, maxRetries int, backoff time.Duration, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidInput) {
			return err
		}
		if attempt == maxRetries {
			break
		}

		select {
		case <-time.After(backoffDelay(backoff, attempt)):
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
	}
	return err
}

// backoffDelay is base doubled attempt times, capped at maxBackoff.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 0; i < attempt && delay < maxBackoff; i++ {
		delay *= 2
	}
	return min(delay, maxBackoff)
}
