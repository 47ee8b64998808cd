package channel

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// SyncStatus
// ---------------------------------------------------------------------------

// SyncStatus is the per-mapping synchronization status, mutated only by the
// reconciliation engine.
type SyncStatus string

const (
	// SyncStatusPending indicates the mapping has not been reconciled yet
	SyncStatusPending SyncStatus = "PENDING"
	// SyncStatusSynced indicates the last reconciliation succeeded
	SyncStatusSynced SyncStatus = "SYNCED"
	// SyncStatusError indicates the last reconciliation failed
	SyncStatusError SyncStatus = "ERROR"
)

// IsValid returns true if the status is valid.
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSynced, SyncStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus.
func (s SyncStatus) String() string {
	return string(s)
}

// Margin bounds for the retail price multiplier. A margin outside this range
// is rejected with a validation error, never clamped.
var (
	MinPriceMargin = decimal.NewFromFloat(1.0)
	MaxPriceMargin = decimal.NewFromFloat(5.0)
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidateSKU checks that a store SKU is well formed.
func ValidateSKU(sku string) error {
	if !skuPattern.MatchString(sku) {
		return ErrInvalidSKU
	}
	return nil
}

// ValidateMargin checks that a price margin lies within [1.0, 5.0].
func ValidateMargin(margin decimal.Decimal) error {
	if margin.LessThan(MinPriceMargin) || margin.GreaterThan(MaxPriceMargin) {
		return ErrInvalidMargin
	}
	return nil
}

// ---------------------------------------------------------------------------
// SKUMapping Entity
// ---------------------------------------------------------------------------

// SKUMapping associates a store SKU with its product identifiers on both
// platforms. At most one active mapping may exist per SKU. Mappings are
// deactivated (soft), never physically deleted, so sync job history stays
// referentially meaningful.
type SKUMapping struct {
	// ID is the unique identifier of this mapping
	ID uuid.UUID
	// SKU is the store-level SKU this mapping is keyed by
	SKU string
	// MarketplaceRef identifies the product on the marketplace platform
	MarketplaceRef ProductRef
	// StorefrontRef identifies the product on the storefront platform
	StorefrontRef ProductRef
	// PriceMargin is the multiplier applied to the converted source price
	PriceMargin decimal.Decimal
	// IsActive indicates whether this mapping participates in synchronization
	IsActive bool
	// SyncStatus is the result of the last reconciliation (engine-owned)
	SyncStatus SyncStatus
	// LastSyncedAt is when the mapping was last reconciled (engine-owned)
	LastSyncedAt *time.Time
	// LastSyncError holds the error detail from the last failed reconciliation
	LastSyncError string
	// DeactivatedAt is when the mapping was soft-deleted
	DeactivatedAt *time.Time
	// CreatedAt is when the mapping was created
	CreatedAt time.Time
	// UpdatedAt is when the mapping was last updated
	UpdatedAt time.Time
}

// NewSKUMapping creates a new active mapping. The SKU, both platform
// references and the margin are validated up front.
func NewSKUMapping(sku string, marketplaceRef, storefrontRef ProductRef, margin decimal.Decimal) (*SKUMapping, error) {
	if err := ValidateSKU(sku); err != nil {
		return nil, err
	}
	if marketplaceRef.IsZero() || storefrontRef.IsZero() {
		return nil, ErrInvalidRef
	}
	if err := ValidateMargin(margin); err != nil {
		return nil, err
	}

	now := time.Now()
	return &SKUMapping{
		ID:             uuid.New(),
		SKU:            sku,
		MarketplaceRef: marketplaceRef,
		StorefrontRef:  storefrontRef,
		PriceMargin:    margin,
		IsActive:       true,
		SyncStatus:     SyncStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// RefFor returns the product reference for the given platform.
func (m *SKUMapping) RefFor(platform PlatformCode) ProductRef {
	if platform == PlatformNaver {
		return m.MarketplaceRef
	}
	return m.StorefrontRef
}

// MarkSynced records a successful reconciliation.
func (m *SKUMapping) MarkSynced(ts time.Time) {
	m.SyncStatus = SyncStatusSynced
	m.LastSyncedAt = &ts
	m.LastSyncError = ""
	m.UpdatedAt = ts
}

// MarkSyncFailed records a failed reconciliation with error detail.
func (m *SKUMapping) MarkSyncFailed(ts time.Time, errMsg string) {
	m.SyncStatus = SyncStatusError
	m.LastSyncedAt = &ts
	m.LastSyncError = errMsg
	m.UpdatedAt = ts
}

// UpdateMargin changes the price margin after validation.
func (m *SKUMapping) UpdateMargin(margin decimal.Decimal) error {
	if err := ValidateMargin(margin); err != nil {
		return err
	}
	m.PriceMargin = margin
	m.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the mapping. Deactivated mappings are excluded
// from every pass and every webhook-derived action.
func (m *SKUMapping) Deactivate() {
	if !m.IsActive {
		return
	}
	now := time.Now()
	m.IsActive = false
	m.DeactivatedAt = &now
	m.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// SKUMappingRepository
// ---------------------------------------------------------------------------

// SKUMappingFilter defines filter criteria for listing mappings.
type SKUMappingFilter struct {
	// IsActive filters by active status (optional)
	IsActive *bool
	// SyncStatus filters by last sync status (optional)
	SyncStatus *SyncStatus
	// Page number (1-indexed)
	Page int
	// Page size
	PageSize int
}

// SKUMappingReader defines read access to mappings.
type SKUMappingReader interface {
	// FindByID finds a mapping by its ID regardless of active state
	FindByID(ctx context.Context, id uuid.UUID) (*SKUMapping, error)

	// FindActiveBySKU finds the single active mapping for a SKU
	FindActiveBySKU(ctx context.Context, sku string) (*SKUMapping, error)

	// FindAllActive returns every active mapping, ordered by creation time
	FindAllActive(ctx context.Context) ([]SKUMapping, error)

	// FindActiveBySKUs returns the active mappings for the given SKUs
	FindActiveBySKUs(ctx context.Context, skus []string) ([]SKUMapping, error)

	// FindActiveByPlatformRef resolves the active mapping that carries the
	// given platform product identifier. Webhook events that do not carry a
	// store SKU are resolved through this lookup.
	FindActiveByPlatformRef(ctx context.Context, platform PlatformCode, productID string) (*SKUMapping, error)

	// FindAll lists mappings with optional filters
	FindAll(ctx context.Context, filter SKUMappingFilter) ([]SKUMapping, int64, error)

	// ExistsActiveBySKU reports whether an active mapping exists for a SKU
	ExistsActiveBySKU(ctx context.Context, sku string) (bool, error)
}

// SKUMappingWriter defines write access to mappings.
type SKUMappingWriter interface {
	// Save creates or updates a mapping
	Save(ctx context.Context, mapping *SKUMapping) error

	// MarkSyncResult updates syncStatus/lastSyncedAt for a SKU. Only the
	// reconciliation engine calls this.
	MarkSyncResult(ctx context.Context, sku string, status SyncStatus, ts time.Time, errMsg string) error
}

// SKUMappingRepository is the full mapping persistence interface.
type SKUMappingRepository interface {
	SKUMappingReader
	SKUMappingWriter
}
