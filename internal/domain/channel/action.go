package channel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Corrective Actions
// ---------------------------------------------------------------------------

// CorrectiveAction is the normalized model shared by pass items and
// webhook-derived deltas: the minimal set of writes needed to bring a
// platform's reported state to the computed target. Nil fields mean "no
// change requested" for that dimension.
type CorrectiveAction struct {
	// SKU is the store SKU the action applies to
	SKU string
	// Origin is the platform the action was derived from. Webhook-derived
	// actions treat the origin as correct and write only to the other side.
	Origin PlatformCode
	// Quantity is the target available quantity, if inventory changed
	Quantity *int64
	// Price is the new source price, if price changed
	Price *decimal.Decimal
}

// Validate checks the action before it reaches the engine.
func (a *CorrectiveAction) Validate() error {
	if err := ValidateSKU(a.SKU); err != nil {
		return err
	}
	if !a.Origin.IsValid() {
		return ErrInvalidPlatform
	}
	if a.Quantity == nil && a.Price == nil {
		return ErrValidation
	}
	return nil
}

// ---------------------------------------------------------------------------
// Realtime Sink
// ---------------------------------------------------------------------------

// ActionEvent types published to the realtime sink.
const (
	ActionEventInventoryUpdate = "inventory:update"
	ActionEventPriceUpdate     = "price:update"
)

// ActionEvent notifies observers of one completed corrective write.
type ActionEvent struct {
	// Type is inventory:update or price:update
	Type string `json:"type"`
	// SKU is the affected store SKU
	SKU string `json:"sku"`
	// Platform is the platform that was written to
	Platform PlatformCode `json:"platform"`
	// Value is the written value, stringified
	Value string `json:"value"`
	// JobID links the event to its ledger entry
	JobID uuid.UUID `json:"jobId"`
	// OccurredAt is when the write completed
	OccurredAt time.Time `json:"occurredAt"`
}

// Broadcaster is the port for the realtime sink. Delivery failure must never
// affect the core: implementations log and drop.
type Broadcaster interface {
	Publish(ctx context.Context, event ActionEvent) error
}
