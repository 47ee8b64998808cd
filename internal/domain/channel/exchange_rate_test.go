package channel

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// ExchangeRate Tests
// ---------------------------------------------------------------------------

func TestNewQuotedRate(t *testing.T) {
	now := time.Now()

	t.Run("Valid quoted rate", func(t *testing.T) {
		r, err := NewQuotedRate("KRW", "USD", decimal.RequireFromString("0.00075"), now, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "KRW", r.BaseCurrency)
		assert.Equal(t, "USD", r.TargetCurrency)
		assert.Equal(t, RateSourceQuoted, r.Source)
		assert.Empty(t, r.Reason)
		assert.Empty(t, r.OperatorID)
	})

	t.Run("Same currency pair rejected", func(t *testing.T) {
		_, err := NewQuotedRate("USD", "USD", decimal.NewFromInt(1), now, now.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("Non-positive rate rejected", func(t *testing.T) {
		_, err := NewQuotedRate("KRW", "USD", decimal.Zero, now, now.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvalidRate)

		_, err = NewQuotedRate("KRW", "USD", decimal.NewFromInt(-1), now, now.Add(time.Hour))
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("Inverted validity window rejected", func(t *testing.T) {
		_, err := NewQuotedRate("KRW", "USD", decimal.NewFromInt(1), now.Add(time.Hour), now)
		assert.ErrorIs(t, err, ErrInvalidRate)
	})
}

func TestNewManualRate(t *testing.T) {
	now := time.Now()

	t.Run("Valid manual override", func(t *testing.T) {
		r, err := NewManualRate("KRW", "USD", decimal.RequireFromString("0.0008"),
			"quote feed drifting during KRW volatility", "op-42", now, now.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, RateSourceManual, r.Source)
		assert.Equal(t, "quote feed drifting during KRW volatility", r.Reason)
		assert.Equal(t, "op-42", r.OperatorID)
	})

	t.Run("Missing reason rejected", func(t *testing.T) {
		_, err := NewManualRate("KRW", "USD", decimal.NewFromInt(1), "", "op-42", now, now.Add(time.Hour))
		assert.ErrorIs(t, err, ErrManualRateReason)
	})

	t.Run("Missing operator rejected", func(t *testing.T) {
		_, err := NewManualRate("KRW", "USD", decimal.NewFromInt(1), "reason", "", now, now.Add(time.Hour))
		assert.ErrorIs(t, err, ErrManualRateReason)
	})

	t.Run("Validity window above cap rejected", func(t *testing.T) {
		_, err := NewManualRate("KRW", "USD", decimal.NewFromInt(1), "reason", "op-42",
			now, now.Add(MaxManualRateValidity+time.Minute))
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("Validity window at cap accepted", func(t *testing.T) {
		_, err := NewManualRate("KRW", "USD", decimal.NewFromInt(1), "reason", "op-42",
			now, now.Add(MaxManualRateValidity))
		assert.NoError(t, err)
	})
}

func TestExchangeRate_IsValidAt(t *testing.T) {
	now := time.Now()
	r, err := NewQuotedRate("KRW", "USD", decimal.NewFromInt(1), now, now.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, r.IsValidAt(now))
	assert.True(t, r.IsValidAt(now.Add(30*time.Minute)))
	assert.False(t, r.IsValidAt(now.Add(-time.Second)))
	assert.False(t, r.IsValidAt(now.Add(time.Hour)), "window end is exclusive")
}

// ---------------------------------------------------------------------------
// SelectCurrent Tests
// ---------------------------------------------------------------------------

func TestSelectCurrent(t *testing.T) {
	now := time.Now()

	quoted := func(rate string, createdAgo time.Duration) ExchangeRate {
		r, err := NewQuotedRate("KRW", "USD", decimal.RequireFromString(rate), now.Add(-time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		r.CreatedAt = now.Add(-createdAgo)
		return *r
	}
	manual := func(rate string, createdAgo time.Duration) ExchangeRate {
		r, err := NewManualRate("KRW", "USD", decimal.RequireFromString(rate),
			"volatility override", "op-42", now.Add(-time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		r.CreatedAt = now.Add(-createdAgo)
		return *r
	}

	t.Run("Latest quoted wins without manual", func(t *testing.T) {
		got, err := SelectCurrent([]ExchangeRate{
			quoted("0.00070", 2*time.Hour),
			quoted("0.00075", 10*time.Minute),
			quoted("0.00072", time.Hour),
		}, now)
		require.NoError(t, err)
		assert.True(t, got.Rate.Equal(decimal.RequireFromString("0.00075")))
	})

	t.Run("Valid manual outranks newer quoted", func(t *testing.T) {
		got, err := SelectCurrent([]ExchangeRate{
			manual("0.00080", 30*time.Minute),
			quoted("0.00075", time.Minute),
		}, now)
		require.NoError(t, err)
		assert.Equal(t, RateSourceManual, got.Source)
		assert.True(t, got.Rate.Equal(decimal.RequireFromString("0.00080")))
	})

	t.Run("Latest manual wins among manuals", func(t *testing.T) {
		got, err := SelectCurrent([]ExchangeRate{
			manual("0.00080", time.Hour),
			manual("0.00082", 5*time.Minute),
		}, now)
		require.NoError(t, err)
		assert.True(t, got.Rate.Equal(decimal.RequireFromString("0.00082")))
	})

	t.Run("Expired manual falls back to quoted", func(t *testing.T) {
		expired, err := NewManualRate("KRW", "USD", decimal.RequireFromString("0.00090"),
			"old override", "op-42", now.Add(-48*time.Hour), now.Add(-24*time.Hour))
		require.NoError(t, err)

		got, err := SelectCurrent([]ExchangeRate{*expired, quoted("0.00075", time.Minute)}, now)
		require.NoError(t, err)
		assert.Equal(t, RateSourceQuoted, got.Source)
	})

	t.Run("No valid record fails closed", func(t *testing.T) {
		_, err := SelectCurrent(nil, now)
		assert.ErrorIs(t, err, ErrExchangeRateUnavailable)

		stale, err2 := NewQuotedRate("KRW", "USD", decimal.NewFromInt(1), now.Add(-2*time.Hour), now.Add(-time.Hour))
		require.NoError(t, err2)
		_, err = SelectCurrent([]ExchangeRate{*stale}, now)
		assert.ErrorIs(t, err, ErrExchangeRateUnavailable)
	})
}
