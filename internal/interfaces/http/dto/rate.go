package dto

import (
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Exchange Rate DTOs
// ---------------------------------------------------------------------------

// RatePairRequest selects a currency pair
type RatePairRequest struct {
	Base   string `form:"base" binding:"omitempty,len=3,uppercase"`
	Target string `form:"target" binding:"omitempty,len=3,uppercase"`
}

// SetManualRateRequest records an operator rate override
type SetManualRateRequest struct {
	BaseCurrency   string `json:"baseCurrency" binding:"required,len=3,uppercase"`
	TargetCurrency string `json:"targetCurrency" binding:"required,len=3,uppercase"`
	Rate           string `json:"rate" binding:"required"`
	Reason         string `json:"reason" binding:"required"`
	OperatorID     string `json:"operatorId" binding:"required"`
	ValidHours     int    `json:"validHours" binding:"omitempty,min=1,max=168"`
}

// RecordQuotedRateRequest records a rate from the external quote feed
type RecordQuotedRateRequest struct {
	BaseCurrency   string `json:"baseCurrency" binding:"required,len=3,uppercase"`
	TargetCurrency string `json:"targetCurrency" binding:"required,len=3,uppercase"`
	Rate           string `json:"rate" binding:"required"`
	ValidHours     int    `json:"validHours" binding:"omitempty,min=1"`
}

// CurrentRateResponse is the effective rate for a pair right now
type CurrentRateResponse struct {
	BaseCurrency   string `json:"baseCurrency"`
	TargetCurrency string `json:"targetCurrency"`
	Rate           string `json:"rate"`
}

// RateResponse is one exchange rate record
type RateResponse struct {
	ID             string    `json:"id"`
	BaseCurrency   string    `json:"baseCurrency"`
	TargetCurrency string    `json:"targetCurrency"`
	Rate           string    `json:"rate"`
	Source         string    `json:"source"`
	Reason         string    `json:"reason,omitempty"`
	OperatorID     string    `json:"operatorId,omitempty"`
	ValidFrom      time.Time `json:"validFrom"`
	ValidUntil     time.Time `json:"validUntil"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToRateResponse converts a domain rate record to its response shape.
func ToRateResponse(r *channel.ExchangeRate) RateResponse {
	return RateResponse{
		ID:             r.ID.String(),
		BaseCurrency:   r.BaseCurrency,
		TargetCurrency: r.TargetCurrency,
		Rate:           r.Rate.String(),
		Source:         string(r.Source),
		Reason:         r.Reason,
		OperatorID:     r.OperatorID,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		CreatedAt:      r.CreatedAt,
	}
}

// ToRateResponses converts a list of domain rate records.
func ToRateResponses(rates []channel.ExchangeRate) []RateResponse {
	out := make([]RateResponse, 0, len(rates))
	for i := range rates {
		out = append(out, ToRateResponse(&rates[i]))
	}
	return out
}
