package channel

import (
	"context"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// MappingService
// ---------------------------------------------------------------------------

// CreateMappingInput carries a new mapping request.
type CreateMappingInput struct {
	SKU            string
	MarketplaceRef channel.ProductRef
	StorefrontRef  channel.ProductRef
	PriceMargin    decimal.Decimal
}

// MappingService provides operator CRUD over SKU mappings. syncStatus and
// lastSyncedAt are engine-owned and not mutable here.
type MappingService struct {
	mappings channel.SKUMappingRepository
}

// NewMappingService creates a MappingService.
func NewMappingService(mappings channel.SKUMappingRepository) *MappingService {
	return &MappingService{mappings: mappings}
}

// CreateMapping creates a new active mapping. At most one active mapping may
// exist per SKU.
func (s *MappingService) CreateMapping(ctx context.Context, input CreateMappingInput) (*channel.SKUMapping, error) {
	exists, err := s.mappings.ExistsActiveBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, channel.ErrMappingAlreadyExists
	}

	mapping, err := channel.NewSKUMapping(input.SKU, input.MarketplaceRef, input.StorefrontRef, input.PriceMargin)
	if err != nil {
		return nil, err
	}

	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// GetMapping retrieves a mapping by ID regardless of active state.
func (s *MappingService) GetMapping(ctx context.Context, id uuid.UUID) (*channel.SKUMapping, error) {
	return s.mappings.FindByID(ctx, id)
}

// ListMappings lists mappings with filtering.
func (s *MappingService) ListMappings(ctx context.Context, filter channel.SKUMappingFilter) ([]channel.SKUMapping, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.mappings.FindAll(ctx, filter)
}

// UpdateMargin changes a mapping's price margin.
func (s *MappingService) UpdateMargin(ctx context.Context, id uuid.UUID, margin decimal.Decimal) (*channel.SKUMapping, error) {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mapping.IsActive {
		return nil, channel.ErrMappingInactive
	}

	if err := mapping.UpdateMargin(margin); err != nil {
		return nil, err
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// DeactivateMapping soft-deletes a mapping. Deactivated mappings drop out of
// every pass and every webhook-derived action; history referencing the SKU
// stays intact.
func (s *MappingService) DeactivateMapping(ctx context.Context, id uuid.UUID) error {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !mapping.IsActive {
		return channel.ErrMappingInactive
	}

	mapping.Deactivate()
	return s.mappings.Save(ctx, mapping)
}
