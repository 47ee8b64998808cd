package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appchannel "github.com/channelsync/backend/internal/application/channel"
	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/config"
	"github.com/channelsync/backend/internal/interfaces/http/dto"
)

// Signature headers carrying the base64-wrapped HMAC-SHA256 of the raw body.
const (
	naverSignatureHeader   = "X-Naver-Signature"
	shopifySignatureHeader = "X-Shopify-Hmac-Sha256"
)

// WebhookProcessor is the pipeline surface the webhook endpoints need.
type WebhookProcessor interface {
	HandleEvent(ctx context.Context, inbound appchannel.InboundEvent) (*channel.WebhookEvent, error)
	RecentEvents(ctx context.Context, limit int) ([]channel.WebhookEvent, error)
}

// WebhookHandler receives inbound platform notifications. It owns signature
// verification and payload normalization; everything past that point is the
// pipeline's job.
type WebhookHandler struct {
	BaseHandler
	pipeline WebhookProcessor
	secrets  config.WebhookConfig
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(pipeline WebhookProcessor, secrets config.WebhookConfig, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		pipeline: pipeline,
		secrets:  secrets,
		logger:   logger,
	}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/:platform", h.Receive)
		webhooks.GET("/recent", h.ListRecent)
	}
}

// normalizedPayload is the platform-agnostic body shape both platforms are
// decoded into before verification hands off to the pipeline.
type normalizedPayload struct {
	SKU       string `json:"sku"`
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Kind      string `json:"kind" binding:"required,oneof=INVENTORY PRICE"`
	Quantity  *int64 `json:"quantity"`
	Price     string `json:"price"`
}

// Receive accepts one platform notification. The raw body is verified against
// the per-platform secret before any parsing; a bad or missing signature is
// rejected without touching the event log. Suppressed events still return 200.
func (h *WebhookHandler) Receive(c *gin.Context) {
	platform := channel.PlatformCode(strings.ToUpper(c.Param("platform")))
	if !platform.IsValid() {
		h.NotFound(c, "unknown platform")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "unable to read request body")
		return
	}

	if !h.verifySignature(platform, body, c.GetHeader(signatureHeader(platform))) {
		h.logger.Warn("webhook signature rejected",
			zap.String("platform", platform.String()),
			zap.String("remoteAddr", c.ClientIP()))
		h.Unauthorized(c, "invalid webhook signature")
		return
	}

	var payload normalizedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.BadRequest(c, "invalid JSON payload")
		return
	}

	inbound, err := toInboundEvent(platform, payload, body)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	event, err := h.pipeline.HandleEvent(c.Request.Context(), *inbound)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.ToWebhookEventResponse(event))
}

// ListRecent lists the latest webhook log entries, newest first.
func (h *WebhookHandler) ListRecent(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			h.BadRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	events, err := h.pipeline.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.ToWebhookEventResponses(events))
}

func signatureHeader(platform channel.PlatformCode) string {
	if platform == channel.PlatformShopify {
		return shopifySignatureHeader
	}
	return naverSignatureHeader
}

// verifySignature checks the base64-wrapped HMAC-SHA256 of the raw body
// against the platform secret. The comparison is constant-time.
func (h *WebhookHandler) verifySignature(platform channel.PlatformCode, body []byte, signature string) bool {
	secret := h.secrets.NaverSecret
	if platform == channel.PlatformShopify {
		secret = h.secrets.ShopifySecret
	}
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func toInboundEvent(platform channel.PlatformCode, payload normalizedPayload, raw []byte) (*appchannel.InboundEvent, error) {
	kind := channel.WebhookEventKind(payload.Kind)
	if !kind.IsValid() {
		return nil, channel.ErrValidation
	}
	if payload.SKU == "" && payload.ProductID == "" {
		return nil, channel.ErrValidation
	}

	inbound := &appchannel.InboundEvent{
		Platform:    platform,
		SKU:         payload.SKU,
		ExternalRef: payload.ProductID,
		Kind:        kind,
		Payload:     json.RawMessage(raw),
		Quantity:    payload.Quantity,
	}
	if payload.Price != "" {
		price, err := decimal.NewFromString(payload.Price)
		if err != nil {
			return nil, channel.ErrValidation
		}
		inbound.Price = &price
	}
	return inbound, nil
}
