package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelsync/backend/internal/domain/channel"
)

func TestGormExchangeRateRepository_FindValidAt(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormExchangeRateRepository(db)
	ctx := context.Background()
	now := time.Now()

	current, err := channel.NewQuotedRate("KRW", "USD", decimal.NewFromFloat(0.00075),
		now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, current))

	expired, err := channel.NewQuotedRate("KRW", "USD", decimal.NewFromFloat(0.00080),
		now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, expired))

	otherPair, err := channel.NewQuotedRate("KRW", "EUR", decimal.NewFromFloat(0.00070),
		now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, otherPair))

	t.Run("returns only records covering the instant for the pair", func(t *testing.T) {
		rates, err := repo.FindValidAt(ctx, "KRW", "USD", now)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, current.ID, rates[0].ID)
		assert.True(t, rates[0].Rate.Equal(decimal.NewFromFloat(0.00075)))
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		rates, err := repo.FindValidAt(ctx, "KRW", "USD", current.ValidUntil)
		require.NoError(t, err)
		assert.Empty(t, rates)
	})
}

func TestGormExchangeRateRepository_FindRecent(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormExchangeRateRepository(db)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 4; i++ {
		rate, err := channel.NewQuotedRate("KRW", "USD", decimal.NewFromFloat(0.00075),
			now.Add(time.Duration(i)*time.Hour), now.Add(time.Duration(i+1)*time.Hour))
		require.NoError(t, err)
		rate.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, rate))
	}

	rates, err := repo.FindRecent(ctx, "KRW", "USD", 2)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	// Newest first
	assert.True(t, rates[0].CreatedAt.After(rates[1].CreatedAt))
}

func TestGormExchangeRateRepository_ManualRateRoundTrip(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormExchangeRateRepository(db)
	ctx := context.Background()
	now := time.Now()

	manual, err := channel.NewManualRate("KRW", "USD", decimal.NewFromFloat(0.00078),
		"bank feed outage", "ops-17", now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, manual))

	rates, err := repo.FindValidAt(ctx, "KRW", "USD", now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, channel.RateSourceManual, rates[0].Source)
	assert.Equal(t, "bank feed outage", rates[0].Reason)
	assert.Equal(t, "ops-17", rates[0].OperatorID)
}
