package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appchannel "github.com/channelsync/backend/internal/application/channel"
	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/interfaces/http/dto"
)

// MappingManager is the application surface the mapping endpoints need.
type MappingManager interface {
	CreateMapping(ctx context.Context, input appchannel.CreateMappingInput) (*channel.SKUMapping, error)
	GetMapping(ctx context.Context, id uuid.UUID) (*channel.SKUMapping, error)
	ListMappings(ctx context.Context, filter channel.SKUMappingFilter) ([]channel.SKUMapping, int64, error)
	UpdateMargin(ctx context.Context, id uuid.UUID, margin decimal.Decimal) (*channel.SKUMapping, error)
	DeactivateMapping(ctx context.Context, id uuid.UUID) error
}

// MappingHandler handles SKU mapping CRUD endpoints
type MappingHandler struct {
	BaseHandler
	mappings MappingManager
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(mappings MappingManager) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

// RegisterRoutes registers mapping routes
func (h *MappingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mappings := rg.Group("/mappings")
	{
		mappings.POST("", h.Create)
		mappings.GET("", h.List)
		mappings.GET("/:id", h.Get)
		mappings.PUT("/:id/margin", h.UpdateMargin)
		mappings.DELETE("/:id", h.Deactivate)
	}
}

// Create creates a new active mapping.
func (h *MappingHandler) Create(c *gin.Context) {
	var req dto.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	margin, err := decimal.NewFromString(req.PriceMargin)
	if err != nil {
		h.BadRequest(c, "priceMargin must be a decimal number")
		return
	}

	mapping, err := h.mappings.CreateMapping(c.Request.Context(), appchannel.CreateMappingInput{
		SKU: req.SKU,
		MarketplaceRef: channel.ProductRef{
			ProductID: req.MarketplaceRef.ProductID,
			VariantID: req.MarketplaceRef.VariantID,
		},
		StorefrontRef: channel.ProductRef{
			ProductID: req.StorefrontRef.ProductID,
			VariantID: req.StorefrontRef.VariantID,
		},
		PriceMargin: margin,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.ToMappingResponse(mapping))
}

// List lists mappings with optional active/status filters.
func (h *MappingHandler) List(c *gin.Context) {
	var req dto.ListMappingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filter := channel.SKUMappingFilter{
		IsActive: req.Active,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Status != "" {
		status := channel.SyncStatus(req.Status)
		filter.SyncStatus = &status
	}

	mappings, total, err := h.mappings.ListMappings(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToMappingResponses(mappings), total, req.Page, req.PageSize)
}

// Get returns one mapping by ID regardless of active state.
func (h *MappingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid mapping id")
		return
	}

	mapping, err := h.mappings.GetMapping(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.ToMappingResponse(mapping))
}

// UpdateMargin changes a mapping's price margin.
func (h *MappingHandler) UpdateMargin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid mapping id")
		return
	}

	var req dto.UpdateMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	margin, err := decimal.NewFromString(req.PriceMargin)
	if err != nil {
		h.BadRequest(c, "priceMargin must be a decimal number")
		return
	}

	mapping, err := h.mappings.UpdateMargin(c.Request.Context(), id, margin)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.ToMappingResponse(mapping))
}

// Deactivate soft-deletes a mapping. History referencing the SKU stays intact.
func (h *MappingHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid mapping id")
		return
	}

	if err := h.mappings.DeactivateMapping(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
