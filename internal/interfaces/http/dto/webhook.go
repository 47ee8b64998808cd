package dto

import (
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Webhook Log DTOs
// ---------------------------------------------------------------------------

// WebhookEventResponse is one webhook log entry
type WebhookEventResponse struct {
	ID          string     `json:"id"`
	Platform    string     `json:"platform"`
	SKU         string     `json:"sku,omitempty"`
	ExternalRef string     `json:"externalRef,omitempty"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	ReceivedAt  time.Time  `json:"receivedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// ToWebhookEventResponse converts a domain webhook log entry.
func ToWebhookEventResponse(e *channel.WebhookEvent) WebhookEventResponse {
	return WebhookEventResponse{
		ID:          e.ID.String(),
		Platform:    e.Platform.String(),
		SKU:         e.SKU,
		ExternalRef: e.ExternalRef,
		Kind:        string(e.Kind),
		Status:      string(e.Status),
		Error:       e.Error,
		ReceivedAt:  e.ReceivedAt,
		ProcessedAt: e.ProcessedAt,
	}
}

// ToWebhookEventResponses converts a list of webhook log entries.
func ToWebhookEventResponses(events []channel.WebhookEvent) []WebhookEventResponse {
	out := make([]WebhookEventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToWebhookEventResponse(&events[i]))
	}
	return out
}
