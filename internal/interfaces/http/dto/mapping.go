package dto

import (
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Mapping DTOs
// ---------------------------------------------------------------------------

// ProductRefDTO identifies a product on one platform
type ProductRefDTO struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId,omitempty"`
}

// CreateMappingRequest creates a new SKU mapping
type CreateMappingRequest struct {
	SKU            string        `json:"sku" binding:"required"`
	MarketplaceRef ProductRefDTO `json:"marketplaceRef" binding:"required"`
	StorefrontRef  ProductRefDTO `json:"storefrontRef" binding:"required"`
	PriceMargin    string        `json:"priceMargin" binding:"required"`
}

// UpdateMarginRequest changes a mapping's price margin
type UpdateMarginRequest struct {
	PriceMargin string `json:"priceMargin" binding:"required"`
}

// ListMappingsRequest filters the mapping listing
type ListMappingsRequest struct {
	Active   *bool  `form:"active"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING SYNCED ERROR"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MappingResponse is the externally visible shape of one SKU mapping
type MappingResponse struct {
	ID             string        `json:"id"`
	SKU            string        `json:"sku"`
	MarketplaceRef ProductRefDTO `json:"marketplaceRef"`
	StorefrontRef  ProductRefDTO `json:"storefrontRef"`
	PriceMargin    string        `json:"priceMargin"`
	IsActive       bool          `json:"isActive"`
	SyncStatus     string        `json:"syncStatus"`
	LastSyncedAt   *time.Time    `json:"lastSyncedAt,omitempty"`
	LastSyncError  string        `json:"lastSyncError,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// ToMappingResponse converts a domain mapping to its response shape.
func ToMappingResponse(m *channel.SKUMapping) MappingResponse {
	return MappingResponse{
		ID:  m.ID.String(),
		SKU: m.SKU,
		MarketplaceRef: ProductRefDTO{
			ProductID: m.MarketplaceRef.ProductID,
			VariantID: m.MarketplaceRef.VariantID,
		},
		StorefrontRef: ProductRefDTO{
			ProductID: m.StorefrontRef.ProductID,
			VariantID: m.StorefrontRef.VariantID,
		},
		PriceMargin:   m.PriceMargin.String(),
		IsActive:      m.IsActive,
		SyncStatus:    m.SyncStatus.String(),
		LastSyncedAt:  m.LastSyncedAt,
		LastSyncError: m.LastSyncError,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToMappingResponses converts a list of domain mappings.
func ToMappingResponses(mappings []channel.SKUMapping) []MappingResponse {
	out := make([]MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, ToMappingResponse(&mappings[i]))
	}
	return out
}
