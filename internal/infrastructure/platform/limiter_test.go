package platform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelsync/backend/internal/domain/channel"
)

func TestLimiter_Acquire(t *testing.T) {
	t.Run("grants capacity within the burst", func(t *testing.T) {
		limiter := NewLimiter(10, 3, time.Second)

		for i := 0; i < 3; i++ {
			assert.NoError(t, limiter.Acquire(context.Background()))
		}
	})

	t.Run("reports rate limited when capacity does not arrive in time", func(t *testing.T) {
		limiter := NewLimiter(0.1, 1, 20*time.Millisecond)

		require.NoError(t, limiter.Acquire(context.Background()))

		err := limiter.Acquire(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, channel.ErrPlatformRateLimited)
	})

	t.Run("surfaces caller cancellation instead of rate limited", func(t *testing.T) {
		limiter := NewLimiter(0.1, 1, time.Minute)
		require.NoError(t, limiter.Acquire(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := limiter.Acquire(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("floors invalid rate and burst", func(t *testing.T) {
		limiter := NewLimiter(-1, 0, time.Second)
		assert.NoError(t, limiter.Acquire(context.Background()))
	})
}
