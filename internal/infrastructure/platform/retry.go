package platform

import (
	"context"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"go.uber.org/zap"
)

const (
	// maxAttempts bounds transient-error retries per operation
	maxAttempts = 3
	// baseBackoff is the first retry delay; it doubles per attempt
	baseBackoff = 500 * time.Millisecond
	// maxBackoff caps the per-attempt delay
	maxBackoff = 5 * time.Second
)

// withRetry runs fn under the platform retry policy. Validation, not-found
// and conflict errors surface immediately. An authentication error triggers
// at most one forced credential refresh followed by a single retry. Rate
// limiting and transient platform failures back off exponentially up to
// maxAttempts, bounded by the context deadline.
func withRetry(ctx context.Context, logger *zap.Logger, op string, refresh func(context.Context) error, fn func(context.Context) error) error {
	backoff := baseBackoff
	authRefreshed := false

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if channel.IsNonRetryable(err) {
			return err
		}

		if channel.IsAuthError(err) {
			if authRefreshed || refresh == nil {
				return err
			}
			authRefreshed = true
			logger.Warn("credentials rejected, forcing refresh", zap.String("op", op))
			if rErr := refresh(ctx); rErr != nil {
				return rErr
			}
			continue
		}

		if !channel.IsRetryable(err) || attempt >= maxAttempts {
			return err
		}

		logger.Debug("transient platform error, backing off",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
