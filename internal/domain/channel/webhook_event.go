package channel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// WebhookEvent Log
// ---------------------------------------------------------------------------

// WebhookEventKind classifies what an inbound platform notification changed.
type WebhookEventKind string

const (
	// WebhookKindInventory signals a stock change on the originating platform
	WebhookKindInventory WebhookEventKind = "INVENTORY"
	// WebhookKindPrice signals a price change on the originating platform
	WebhookKindPrice WebhookEventKind = "PRICE"
)

// IsValid returns true if the kind is valid.
func (k WebhookEventKind) IsValid() bool {
	return k == WebhookKindInventory || k == WebhookKindPrice
}

// WebhookEventStatus is the processing state of a logged webhook event.
// The log is append-only; entries are mutated only to mark the outcome.
type WebhookEventStatus string

const (
	WebhookStatusReceived   WebhookEventStatus = "RECEIVED"
	WebhookStatusProcessed  WebhookEventStatus = "PROCESSED"
	WebhookStatusSuppressed WebhookEventStatus = "SUPPRESSED"
	WebhookStatusFailed     WebhookEventStatus = "FAILED"
)

// WebhookEvent is one logged inbound platform notification. The webhook
// pipeline owns this lifecycle and hands derived actions to the engine
// rather than writing mapping state itself.
type WebhookEvent struct {
	// ID is the log entry identifier
	ID uuid.UUID
	// Platform is the originating platform
	Platform PlatformCode
	// SKU is the resolved store SKU, when the event carried one
	SKU string
	// ExternalRef is the platform-side product reference from the event
	ExternalRef string
	// Kind is what changed
	Kind WebhookEventKind
	// Payload is the normalized event payload
	Payload json.RawMessage
	// Status is the processing state
	Status WebhookEventStatus
	// Error holds failure or suppression detail
	Error string
	// ReceivedAt is when the event was accepted
	ReceivedAt time.Time
	// ProcessedAt is when processing finished
	ProcessedAt *time.Time
}

// NewWebhookEvent creates a RECEIVED log entry.
func NewWebhookEvent(platform PlatformCode, sku, externalRef string, kind WebhookEventKind, payload json.RawMessage) (*WebhookEvent, error) {
	if !platform.IsValid() {
		return nil, ErrInvalidPlatform
	}
	if !kind.IsValid() {
		return nil, ErrValidation
	}
	return &WebhookEvent{
		ID:          uuid.New(),
		Platform:    platform,
		SKU:         sku,
		ExternalRef: externalRef,
		Kind:        kind,
		Payload:     payload,
		Status:      WebhookStatusReceived,
		ReceivedAt:  time.Now(),
	}, nil
}

// ---------------------------------------------------------------------------
// WebhookEventRepository
// ---------------------------------------------------------------------------

// WebhookEventRepository persists the webhook log with time-bounded retention.
type WebhookEventRepository interface {
	// Save creates a log entry
	Save(ctx context.Context, event *WebhookEvent) error

	// MarkProcessed marks an entry processed
	MarkProcessed(ctx context.Context, id uuid.UUID, ts time.Time) error

	// MarkSuppressed marks an entry suppressed with the reason
	MarkSuppressed(ctx context.Context, id uuid.UUID, ts time.Time, reason string) error

	// MarkFailed marks an entry failed with error detail
	MarkFailed(ctx context.Context, id uuid.UUID, ts time.Time, errMsg string) error

	// FindRecent returns the most recent entries, newest first
	FindRecent(ctx context.Context, limit int) ([]WebhookEvent, error)

	// DeleteOlderThan purges entries received before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
