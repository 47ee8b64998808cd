package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"golang.org/x/time/rate"
)

// Limiter is the outbound request budget for one platform. Each adapter owns
// its own bucket exclusively; nothing else in the process may consume from it.
type Limiter struct {
	bucket  *rate.Limiter
	maxWait time.Duration
}

// NewLimiter creates a token bucket refilling at perSecond with the given
// burst. Acquire gives up after maxWait; zero maxWait means wait as long as
// the caller's context allows.
func NewLimiter(perSecond float64, burst int, maxWait time.Duration) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		bucket:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxWait: maxWait,
	}
}

// Acquire blocks until a request token is available. When capacity cannot be
// obtained within the wait bound the caller sees ErrPlatformRateLimited and
// decides whether to retry.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx := ctx
	if l.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.maxWait)
		defer cancel()
	}

	if err := l.bucket.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: no request capacity within %s", channel.ErrPlatformRateLimited, l.maxWait)
	}
	return nil
}
