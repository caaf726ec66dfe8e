package reconciliation

import (
	"context"
	"fmt"

	"github.com/financeiro/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the automatic retries on optimistic-lock
// conflicts. Each attempt re-reads fresh state, so no backoff is applied.
const DefaultMaxAttempts = 3

// runWithRetry executes fn up to attempts times, retrying only on
// CONCURRENCY_CONFLICT. All other errors, including business errors, are
// returned immediately. When retries exhaust the conflict is surfaced.
func runWithRetry(ctx context.Context, logger *zap.Logger, op string, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return mapStoreError(err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		de, ok := shared.AsDomainError(lastErr)
		if !ok || de.Code != shared.ErrConcurrencyConflict.Code {
			return lastErr
		}

		if attempt < attempts {
			logger.Warn("optimistic lock conflict, retrying with fresh state",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
			)
		}
	}

	return fmt.Errorf("%w: %s failed after %d attempts", shared.ErrConcurrencyConflict, op, attempts)
}

// mapStoreError classifies an error from the store layer. Business errors
// pass through untouched; anything else (driver failures, timeouts,
// cancelled contexts) becomes UNAVAILABLE, which callers must not retry
// blindly without an idempotency key.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return fmt.Errorf("%w: %w", shared.ErrUnavailable, err)
}
