package channel

import (
	"context"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// ExchangeRateService
// ---------------------------------------------------------------------------

// ExchangeRateService resolves and records conversion rates.
type ExchangeRateService interface {
	// CurrentRate returns the effective rate for the pair right now. A valid
	// manual override always outranks quoted records.
	CurrentRate(ctx context.Context, base, target string) (decimal.Decimal, error)

	// SetManualRate records an operator override
	SetManualRate(ctx context.Context, input SetManualRateInput) (*channel.ExchangeRate, error)

	// RecordQuotedRate records a rate from the external quote feed
	RecordQuotedRate(ctx context.Context, input RecordQuotedRateInput) (*channel.ExchangeRate, error)

	// RecentRates returns recent records for the pair, newest first
	RecentRates(ctx context.Context, base, target string, limit int) ([]channel.ExchangeRate, error)
}

// SetManualRateInput carries an operator rate override.
type SetManualRateInput struct {
	BaseCurrency   string
	TargetCurrency string
	Rate           decimal.Decimal
	Reason         string
	OperatorID     string
	ValidFor       time.Duration
}

// RecordQuotedRateInput carries a quote feed record.
type RecordQuotedRateInput struct {
	BaseCurrency   string
	TargetCurrency string
	Rate           decimal.Decimal
	ValidFor       time.Duration
}

// ExchangeRateServiceImpl implements ExchangeRateService on the rate record
// repository.
type ExchangeRateServiceImpl struct {
	rates  channel.ExchangeRateRepository
	logger *zap.Logger
}

// NewExchangeRateService creates a new ExchangeRateServiceImpl.
func NewExchangeRateService(rates channel.ExchangeRateRepository, logger *zap.Logger) *ExchangeRateServiceImpl {
	return &ExchangeRateServiceImpl{rates: rates, logger: logger}
}

// CurrentRate resolves the effective rate for the pair.
func (s *ExchangeRateServiceImpl) CurrentRate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	now := time.Now()
	records, err := s.rates.FindValidAt(ctx, base, target, now)
	if err != nil {
		return decimal.Zero, err
	}
	current, err := channel.SelectCurrent(records, now)
	if err != nil {
		return decimal.Zero, err
	}
	return current.Rate, nil
}

// SetManualRate records an operator override. Reason and operator are
// mandatory; the validity window is capped.
func (s *ExchangeRateServiceImpl) SetManualRate(ctx context.Context, input SetManualRateInput) (*channel.ExchangeRate, error) {
	now := time.Now()
	validFor := input.ValidFor
	if validFor <= 0 {
		validFor = channel.MaxManualRateValidity
	}

	rate, err := channel.NewManualRate(
		input.BaseCurrency, input.TargetCurrency, input.Rate,
		input.Reason, input.OperatorID,
		now, now.Add(validFor),
	)
	if err != nil {
		return nil, err
	}
	if err := s.rates.Save(ctx, rate); err != nil {
		return nil, err
	}

	s.logger.Info("manual exchange rate recorded",
		zap.String("pair", input.BaseCurrency+"/"+input.TargetCurrency),
		zap.String("rate", input.Rate.String()),
		zap.String("operator", input.OperatorID),
		zap.Time("validUntil", rate.ValidUntil))
	return rate, nil
}

// RecordQuotedRate records a quote feed rate.
func (s *ExchangeRateServiceImpl) RecordQuotedRate(ctx context.Context, input RecordQuotedRateInput) (*channel.ExchangeRate, error) {
	now := time.Now()
	validFor := input.ValidFor
	if validFor <= 0 {
		validFor = 24 * time.Hour
	}

	rate, err := channel.NewQuotedRate(
		input.BaseCurrency, input.TargetCurrency, input.Rate,
		now, now.Add(validFor),
	)
	if err != nil {
		return nil, err
	}
	if err := s.rates.Save(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// RecentRates lists recent records for the pair.
func (s *ExchangeRateServiceImpl) RecentRates(ctx context.Context, base, target string, limit int) ([]channel.ExchangeRate, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.rates.FindRecent(ctx, base, target, limit)
}

// Ensure ExchangeRateServiceImpl implements ExchangeRateService
var _ ExchangeRateService = (*ExchangeRateServiceImpl)(nil)
