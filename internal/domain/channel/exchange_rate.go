package channel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// ExchangeRate Record
// ---------------------------------------------------------------------------

// RateSource classifies where an exchange rate record came from.
type RateSource string

const (
	// RateSourceQuoted is a rate pulled from an external quote feed
	RateSourceQuoted RateSource = "QUOTED"
	// RateSourceManual is an operator-supplied override. A manual record
	// outranks any quoted record within its validity window.
	RateSourceManual RateSource = "MANUAL"
)

// MaxManualRateValidity bounds how long a manual override may stay in force
// before an operator has to re-confirm it.
const MaxManualRateValidity = 7 * 24 * time.Hour

// ExchangeRate is an immutable conversion rate record with a validity window.
type ExchangeRate struct {
	// ID is the record identifier
	ID uuid.UUID
	// BaseCurrency is the source currency (e.g. KRW)
	BaseCurrency string
	// TargetCurrency is the destination currency (e.g. USD)
	TargetCurrency string
	// Rate is the conversion factor from base to target
	Rate decimal.Decimal
	// Source is where this record came from
	Source RateSource
	// Reason is the mandatory justification for a manual override
	Reason string
	// OperatorID identifies who supplied a manual override
	OperatorID string
	// ValidFrom is the start of the validity window
	ValidFrom time.Time
	// ValidUntil is the end of the validity window
	ValidUntil time.Time
	// CreatedAt is when the record was created; records are never mutated
	CreatedAt time.Time
}

// NewQuotedRate creates a quoted rate record.
func NewQuotedRate(base, target string, rate decimal.Decimal, validFrom, validUntil time.Time) (*ExchangeRate, error) {
	if base == "" || target == "" || base == target {
		return nil, ErrInvalidRate
	}
	if !rate.IsPositive() {
		return nil, ErrInvalidRate
	}
	if !validUntil.After(validFrom) {
		return nil, ErrInvalidRate
	}
	return &ExchangeRate{
		ID:             uuid.New(),
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           rate,
		Source:         RateSourceQuoted,
		ValidFrom:      validFrom,
		ValidUntil:     validUntil,
		CreatedAt:      time.Now(),
	}, nil
}

// NewManualRate creates a manual override record. Reason and operator are
// mandatory and the validity window is capped at MaxManualRateValidity.
func NewManualRate(base, target string, rate decimal.Decimal, reason, operatorID string, validFrom, validUntil time.Time) (*ExchangeRate, error) {
	if reason == "" || operatorID == "" {
		return nil, ErrManualRateReason
	}
	r, err := NewQuotedRate(base, target, rate, validFrom, validUntil)
	if err != nil {
		return nil, err
	}
	if validUntil.Sub(validFrom) > MaxManualRateValidity {
		return nil, ErrInvalidRate
	}
	r.Source = RateSourceManual
	r.Reason = reason
	r.OperatorID = operatorID
	return r, nil
}

// IsValidAt reports whether the record's validity window covers the instant.
func (r *ExchangeRate) IsValidAt(now time.Time) bool {
	return !now.Before(r.ValidFrom) && now.Before(r.ValidUntil)
}

// SelectCurrent picks the effective rate from a set of candidate records:
// the most recently created manual record valid now wins regardless of the
// creation order relative to quoted records; otherwise the most recently
// created quoted record valid now. With no valid record the caller fails
// closed — no rate is fabricated.
func SelectCurrent(records []ExchangeRate, now time.Time) (*ExchangeRate, error) {
	var bestManual, bestQuoted *ExchangeRate
	for i := range records {
		r := &records[i]
		if !r.IsValidAt(now) {
			continue
		}
		switch r.Source {
		case RateSourceManual:
			if bestManual == nil || r.CreatedAt.After(bestManual.CreatedAt) {
				bestManual = r
			}
		case RateSourceQuoted:
			if bestQuoted == nil || r.CreatedAt.After(bestQuoted.CreatedAt) {
				bestQuoted = r
			}
		}
	}
	if bestManual != nil {
		return bestManual, nil
	}
	if bestQuoted != nil {
		return bestQuoted, nil
	}
	return nil, ErrExchangeRateUnavailable
}

// ---------------------------------------------------------------------------
// ExchangeRateRepository
// ---------------------------------------------------------------------------

// ExchangeRateRepository persists immutable rate records.
type ExchangeRateRepository interface {
	// Save stores a new record; records are never updated
	Save(ctx context.Context, rate *ExchangeRate) error

	// FindValidAt returns all records for the currency pair whose validity
	// window covers the instant, newest first
	FindValidAt(ctx context.Context, base, target string, now time.Time) ([]ExchangeRate, error)

	// FindRecent returns the most recent records for the pair, newest first
	FindRecent(ctx context.Context, base, target string, limit int) ([]ExchangeRate, error)
}
