package channel

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// Validation errors — rejected before any I/O, never retried
	ErrValidation       = errors.New("channel: validation failed")
	ErrInvalidSKU       = errors.New("channel: invalid SKU format")
	ErrInvalidMargin    = errors.New("channel: margin outside allowed range")
	ErrInvalidRef       = errors.New("channel: invalid platform product reference")
	ErrInvalidPlatform  = errors.New("channel: invalid platform code")
	ErrInvalidRate      = errors.New("channel: invalid exchange rate")
	ErrManualRateReason = errors.New("channel: manual rate requires reason and operator")

	// Platform errors
	ErrPlatformAuth            = errors.New("channel: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("channel: platform rate limited")
	ErrPlatformUnavailable     = errors.New("channel: platform temporarily unavailable")
	ErrPlatformNotFound        = errors.New("channel: resource not found on platform")
	ErrPlatformConflict        = errors.New("channel: conflicting state on platform")
	ErrPlatformInvalidResponse = errors.New("channel: invalid platform response")
	ErrStaleReference          = errors.New("channel: stale platform product reference")

	// Mapping errors
	ErrMappingNotFound      = errors.New("channel: sku mapping not found")
	ErrMappingAlreadyExists = errors.New("channel: active mapping already exists for sku")
	ErrMappingInactive      = errors.New("channel: sku mapping is inactive")

	// Engine errors
	ErrSyncInProgress          = errors.New("channel: sync already in progress")
	ErrJobTerminal             = errors.New("channel: sync job is in a terminal state")
	ErrJobNotFound             = errors.New("channel: sync job not found")
	ErrExchangeRateUnavailable = errors.New("channel: no valid exchange rate available")
)

// IsRetryable reports whether an error is transient and worth retrying
// (rate limiting and temporary platform failures). Validation, not-found
// and conflict errors are never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPlatformRateLimited) || errors.Is(err, ErrPlatformUnavailable)
}

// IsAuthError reports whether an error indicates failed platform
// authentication, which warrants a single forced token refresh.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrPlatformAuth)
}

// IsNonRetryable reports whether an error must be surfaced immediately
// without any retry attempt.
func IsNonRetryable(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPlatformNotFound) ||
		errors.Is(err, ErrPlatformConflict)
}

// ---------------------------------------------------------------------------
// PlatformCode
// ---------------------------------------------------------------------------

// PlatformCode identifies one of the two synchronized commerce platforms.
type PlatformCode string

const (
	// PlatformNaver is the marketplace platform (Naver Smart Store). It is
	// the authoritative source for inbound order and stock events and the
	// source of the price used for storefront price computation.
	PlatformNaver PlatformCode = "NAVER"
	// PlatformShopify is the storefront platform, priced in a different
	// currency and carrying the computed retail price.
	PlatformShopify PlatformCode = "SHOPIFY"
)

// IsValid returns true if the platform code is one of the two known platforms.
func (c PlatformCode) IsValid() bool {
	return c == PlatformNaver || c == PlatformShopify
}

// String returns the string representation of PlatformCode.
func (c PlatformCode) String() string {
	return string(c)
}

// Other returns the opposite platform. Webhook-derived actions treat the
// originating platform as correct and reconcile only the other side.
func (c PlatformCode) Other() PlatformCode {
	if c == PlatformNaver {
		return PlatformShopify
	}
	return PlatformNaver
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// ProductRef identifies a product (and optionally one of its variants) on a
// specific platform.
type ProductRef struct {
	// ProductID is the platform-level product identifier
	ProductID string
	// VariantID is the variant/SKU-level identifier on the platform (optional)
	VariantID string
}

// IsZero returns true if the reference carries no identifier.
func (r ProductRef) IsZero() bool {
	return r.ProductID == "" && r.VariantID == ""
}

// InventorySnapshot is the normalized, ephemeral view of one platform's
// current stock for a single mapped product. Snapshots are re-read on every
// pass and never cached across passes.
type InventorySnapshot struct {
	// Platform the snapshot was read from
	Platform PlatformCode
	// Quantity is the platform-reported on-hand quantity
	Quantity int64
	// Committed is the quantity reserved or committed to open orders
	Committed int64
	// AsOf is when the platform reported this state
	AsOf time.Time
}

// Sellable returns the quantity actually available for sale.
func (s *InventorySnapshot) Sellable() int64 {
	q := s.Quantity - s.Committed
	if q < 0 {
		return 0
	}
	return q
}

// StaleAt reports whether the snapshot is older than the given threshold
// relative to now. A stale side loses the quantity comparison to the
// fresher side.
func (s *InventorySnapshot) StaleAt(threshold time.Duration, now time.Time) bool {
	if threshold <= 0 {
		return false
	}
	return now.Sub(s.AsOf) > threshold
}

// ---------------------------------------------------------------------------
// CommercePlatform Port Interface
// ---------------------------------------------------------------------------

// CommercePlatform is the port interface for a synchronized commerce
// platform. Concrete adapters (Naver, Shopify) live in the infrastructure
// layer; each owns its own rate limiter bucket and token cache exclusively.
type CommercePlatform interface {
	// PlatformCode returns the platform this client talks to
	PlatformCode() PlatformCode

	// ReadInventory reads the current inventory snapshot for a product
	ReadInventory(ctx context.Context, ref ProductRef) (*InventorySnapshot, error)

	// WriteInventory sets the available quantity for a product
	WriteInventory(ctx context.Context, ref ProductRef, quantity int64) error

	// ReadPrice reads the current sale price for a product
	ReadPrice(ctx context.Context, ref ProductRef) (decimal.Decimal, error)

	// WritePrice sets the sale price for a product
	WritePrice(ctx context.Context, ref ProductRef, amount decimal.Decimal) error
}
