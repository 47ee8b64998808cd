package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSKUMappingRepository implements SKUMappingRepository using GORM
type GormSKUMappingRepository struct {
	db *gorm.DB
}

// NewGormSKUMappingRepository creates a new GormSKUMappingRepository
func NewGormSKUMappingRepository(db *gorm.DB) *GormSKUMappingRepository {
	return &GormSKUMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// SKUMappingReader implementation
// ---------------------------------------------------------------------------

// FindByID finds a mapping by its ID regardless of active state
func (r *GormSKUMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SKUMapping, error) {
	var model models.SKUMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveBySKU finds the single active mapping for a SKU
func (r *GormSKUMappingRepository) FindActiveBySKU(ctx context.Context, sku string) (*channel.SKUMapping, error) {
	var model models.SKUMappingModel
	if err := r.db.WithContext(ctx).
		Where("sku = ? AND is_active = ?", sku, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllActive returns every active mapping, ordered by creation time
func (r *GormSKUMappingRepository) FindAllActive(ctx context.Context) ([]channel.SKUMapping, error) {
	var mappingModels []models.SKUMappingModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// FindActiveBySKUs returns the active mappings for the given SKUs
func (r *GormSKUMappingRepository) FindActiveBySKUs(ctx context.Context, skus []string) ([]channel.SKUMapping, error) {
	if len(skus) == 0 {
		return []channel.SKUMapping{}, nil
	}

	var mappingModels []models.SKUMappingModel
	if err := r.db.WithContext(ctx).
		Where("sku IN ? AND is_active = ?", skus, true).
		Order("created_at ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// FindActiveByPlatformRef resolves the active mapping carrying the given
// platform product identifier
func (r *GormSKUMappingRepository) FindActiveByPlatformRef(ctx context.Context, platform channel.PlatformCode, productID string) (*channel.SKUMapping, error) {
	column := "storefront_product_id"
	if platform == channel.PlatformNaver {
		column = "marketplace_product_id"
	}

	var model models.SKUMappingModel
	if err := r.db.WithContext(ctx).
		Where(column+" = ? AND is_active = ?", productID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists mappings with optional filters and returns the total count
func (r *GormSKUMappingRepository) FindAll(ctx context.Context, filter channel.SKUMappingFilter) ([]channel.SKUMapping, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SKUMappingModel{})
	query = applyMappingFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var mappingModels []models.SKUMappingModel
	if err := query.Order("created_at DESC").Find(&mappingModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainMappings(mappingModels), total, nil
}

// ExistsActiveBySKU reports whether an active mapping exists for a SKU
func (r *GormSKUMappingRepository) ExistsActiveBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SKUMappingModel{}).
		Where("sku = ? AND is_active = ?", sku, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------------------------------------------------------------------------
// SKUMappingWriter implementation
// ---------------------------------------------------------------------------

// Save creates or updates a mapping
func (r *GormSKUMappingRepository) Save(ctx context.Context, mapping *channel.SKUMapping) error {
	model := models.SKUMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// MarkSyncResult updates the engine-owned sync bookkeeping for a SKU
func (r *GormSKUMappingRepository) MarkSyncResult(ctx context.Context, sku string, status channel.SyncStatus, ts time.Time, errMsg string) error {
	result := r.db.WithContext(ctx).
		Model(&models.SKUMappingModel{}).
		Where("sku = ? AND is_active = ?", sku, true).
		Updates(map[string]any{
			"sync_status":     status,
			"last_synced_at":  ts,
			"last_sync_error": errMsg,
			"updated_at":      ts,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return channel.ErrMappingNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func applyMappingFilter(query *gorm.DB, filter channel.SKUMappingFilter) *gorm.DB {
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.SyncStatus != nil && filter.SyncStatus.IsValid() {
		query = query.Where("sync_status = ?", *filter.SyncStatus)
	}
	return query
}

func toDomainMappings(mappingModels []models.SKUMappingModel) []channel.SKUMapping {
	mappings := make([]channel.SKUMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings
}

// Ensure GormSKUMappingRepository implements SKUMappingRepository
var _ channel.SKUMappingRepository = (*GormSKUMappingRepository)(nil)
