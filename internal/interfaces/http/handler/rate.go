package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appchannel "github.com/channelsync/backend/internal/application/channel"
	"github.com/channelsync/backend/internal/interfaces/http/dto"
)

// Default currency pair for the marketplace-to-storefront conversion.
const (
	defaultBaseCurrency   = "KRW"
	defaultTargetCurrency = "USD"
)

// RateHandler handles exchange rate endpoints
type RateHandler struct {
	BaseHandler
	rates appchannel.ExchangeRateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rates appchannel.ExchangeRateService) *RateHandler {
	return &RateHandler{rates: rates}
}

// RegisterRoutes registers rate routes
func (h *RateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rates := rg.Group("/rates")
	{
		rates.GET("/current", h.GetCurrent)
		rates.POST("/manual", h.SetManual)
		rates.POST("/quoted", h.RecordQuoted)
		rates.GET("/recent", h.ListRecent)
	}
}

// GetCurrent resolves the effective rate for the pair. A valid manual
// override always outranks quoted records; with no valid record this
// fails closed with 503.
func (h *RateHandler) GetCurrent(c *gin.Context) {
	var req dto.RatePairRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "base and target must be 3-letter uppercase currency codes")
		return
	}
	base, target := pairOrDefault(req)

	rate, err := h.rates.CurrentRate(c.Request.Context(), base, target)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.CurrentRateResponse{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           rate.String(),
	})
}

// SetManual records an operator override with a mandatory reason.
func (h *RateHandler) SetManual(c *gin.Context) {
	var req dto.SetManualRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		h.BadRequest(c, "rate must be a decimal number")
		return
	}

	record, err := h.rates.SetManualRate(c.Request.Context(), appchannel.SetManualRateInput{
		BaseCurrency:   req.BaseCurrency,
		TargetCurrency: req.TargetCurrency,
		Rate:           rate,
		Reason:         req.Reason,
		OperatorID:     req.OperatorID,
		ValidFor:       time.Duration(req.ValidHours) * time.Hour,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.ToRateResponse(record))
}

// RecordQuoted records a rate from the external quote feed.
func (h *RateHandler) RecordQuoted(c *gin.Context) {
	var req dto.RecordQuotedRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		h.BadRequest(c, "rate must be a decimal number")
		return
	}

	record, err := h.rates.RecordQuotedRate(c.Request.Context(), appchannel.RecordQuotedRateInput{
		BaseCurrency:   req.BaseCurrency,
		TargetCurrency: req.TargetCurrency,
		Rate:           rate,
		ValidFor:       time.Duration(req.ValidHours) * time.Hour,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.ToRateResponse(record))
}

// ListRecent lists recent rate records for the pair, newest first.
func (h *RateHandler) ListRecent(c *gin.Context) {
	var req dto.RatePairRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "base and target must be 3-letter uppercase currency codes")
		return
	}
	base, target := pairOrDefault(req)

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			h.BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	records, err := h.rates.RecentRates(c.Request.Context(), base, target, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.ToRateResponses(records))
}

func pairOrDefault(req dto.RatePairRequest) (string, string) {
	base, target := req.Base, req.Target
	if base == "" {
		base = defaultBaseCurrency
	}
	if target == "" {
		target = defaultTargetCurrency
	}
	return base, target
}
