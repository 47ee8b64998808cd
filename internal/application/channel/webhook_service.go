package channel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Webhook Pipeline
// ---------------------------------------------------------------------------

// InboundEvent is a normalized platform notification. Signature verification
// already happened at the transport boundary; payload parsing into the typed
// delta fields happened in the platform-specific handler.
type InboundEvent struct {
	// Platform is the originating platform
	Platform channel.PlatformCode
	// SKU is the store SKU, when the notification carried one
	SKU string
	// ExternalRef is the platform product identifier, used to resolve the
	// mapping when no SKU was carried
	ExternalRef string
	// Kind is what changed
	Kind channel.WebhookEventKind
	// Payload is the normalized payload kept for the event log
	Payload json.RawMessage
	// Quantity is the reported available quantity, for inventory events
	Quantity *int64
	// Price is the reported source price, for price events
	Price *decimal.Decimal
}

// WebhookService owns the webhook event lifecycle: it logs every inbound
// event, resolves the mapping, derives the corrective action and hands it to
// the engine. It never writes mapping state itself.
type WebhookService struct {
	events   channel.WebhookEventRepository
	mappings channel.SKUMappingReader
	engine   ActionApplier
	logger   *zap.Logger
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(
	events channel.WebhookEventRepository,
	mappings channel.SKUMappingReader,
	engine ActionApplier,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		events:   events,
		mappings: mappings,
		engine:   engine,
		logger:   logger,
	}
}

// HandleEvent processes one inbound event end to end. Suppression (unknown or
// inactive mapping) is a recorded non-error outcome; only processing failures
// propagate to the caller.
func (s *WebhookService) HandleEvent(ctx context.Context, inbound InboundEvent) (*channel.WebhookEvent, error) {
	event, err := channel.NewWebhookEvent(inbound.Platform, inbound.SKU, inbound.ExternalRef, inbound.Kind, inbound.Payload)
	if err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, event); err != nil {
		return nil, err
	}

	mapping, err := s.resolveMapping(ctx, inbound)
	if err != nil {
		reason := "no active mapping for event"
		if errors.Is(err, channel.ErrMappingInactive) {
			reason = "mapping is deactivated"
		}
		s.suppress(ctx, event, reason)
		return event, nil
	}

	action := channel.CorrectiveAction{
		SKU:      mapping.SKU,
		Origin:   inbound.Platform,
		Quantity: inbound.Quantity,
		Price:    inbound.Price,
	}
	if err := action.Validate(); err != nil {
		s.markFailed(ctx, event, err)
		return event, err
	}

	if err := s.engine.ApplyWebhookAction(ctx, action); err != nil {
		s.markFailed(ctx, event, err)
		return event, err
	}

	now := time.Now()
	event.Status = channel.WebhookStatusProcessed
	event.ProcessedAt = &now
	if err := s.events.MarkProcessed(ctx, event.ID, now); err != nil {
		s.logger.Error("failed to mark webhook event processed",
			zap.String("eventId", event.ID.String()), zap.Error(err))
	}

	s.logger.Info("webhook event processed",
		zap.String("eventId", event.ID.String()),
		zap.String("platform", inbound.Platform.String()),
		zap.String("sku", mapping.SKU),
		zap.String("kind", string(inbound.Kind)))
	return event, nil
}

// PurgeOldEvents removes log entries older than the retention window.
func (s *WebhookService) PurgeOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, channel.ErrValidation
	}
	purged, err := s.events.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged webhook events", zap.Int64("count", purged))
	}
	return purged, nil
}

// RecentEvents lists the latest log entries, newest first.
func (s *WebhookService) RecentEvents(ctx context.Context, limit int) ([]channel.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.events.FindRecent(ctx, limit)
}

func (s *WebhookService) resolveMapping(ctx context.Context, inbound InboundEvent) (*channel.SKUMapping, error) {
	if inbound.SKU != "" {
		return s.mappings.FindActiveBySKU(ctx, inbound.SKU)
	}
	if inbound.ExternalRef != "" {
		return s.mappings.FindActiveByPlatformRef(ctx, inbound.Platform, inbound.ExternalRef)
	}
	return nil, channel.ErrMappingNotFound
}

func (s *WebhookService) suppress(ctx context.Context, event *channel.WebhookEvent, reason string) {
	now := time.Now()
	event.Status = channel.WebhookStatusSuppressed
	event.Error = reason
	event.ProcessedAt = &now
	if err := s.events.MarkSuppressed(ctx, event.ID, now, reason); err != nil {
		s.logger.Error("failed to mark webhook event suppressed",
			zap.String("eventId", event.ID.String()), zap.Error(err))
	}
	s.logger.Warn("webhook event suppressed",
		zap.String("eventId", event.ID.String()),
		zap.String("platform", event.Platform.String()),
		zap.String("sku", event.SKU),
		zap.String("reason", reason))
}

func (s *WebhookService) markFailed(ctx context.Context, event *channel.WebhookEvent, cause error) {
	now := time.Now()
	event.Status = channel.WebhookStatusFailed
	event.Error = cause.Error()
	event.ProcessedAt = &now
	if err := s.events.MarkFailed(ctx, event.ID, now, cause.Error()); err != nil {
		s.logger.Error("failed to mark webhook event failed",
			zap.String("eventId", event.ID.String()), zap.Error(err))
	}
}
