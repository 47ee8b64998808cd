package persistence

import (
	"context"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExchangeRateRepository implements ExchangeRateRepository using GORM.
// Rate records are immutable; the repository only inserts and reads.
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// Save stores a new record; records are never updated
func (r *GormExchangeRateRepository) Save(ctx context.Context, rate *channel.ExchangeRate) error {
	model := models.ExchangeRateModelFromDomain(rate)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindValidAt returns all records for the pair whose validity window covers
// the instant, newest first
func (r *GormExchangeRateRepository) FindValidAt(ctx context.Context, base, target string, now time.Time) ([]channel.ExchangeRate, error) {
	var rateModels []models.ExchangeRateModel
	if err := r.db.WithContext(ctx).
		Where("base_currency = ? AND target_currency = ? AND valid_from <= ? AND valid_until > ?",
			base, target, now, now).
		Order("created_at DESC").
		Find(&rateModels).Error; err != nil {
		return nil, err
	}
	return toDomainRates(rateModels), nil
}

// FindRecent returns the most recent records for the pair, newest first
func (r *GormExchangeRateRepository) FindRecent(ctx context.Context, base, target string, limit int) ([]channel.ExchangeRate, error) {
	if limit <= 0 {
		limit = 20
	}

	var rateModels []models.ExchangeRateModel
	if err := r.db.WithContext(ctx).
		Where("base_currency = ? AND target_currency = ?", base, target).
		Order("created_at DESC").
		Limit(limit).
		Find(&rateModels).Error; err != nil {
		return nil, err
	}
	return toDomainRates(rateModels), nil
}

func toDomainRates(rateModels []models.ExchangeRateModel) []channel.ExchangeRate {
	rates := make([]channel.ExchangeRate, len(rateModels))
	for i, model := range rateModels {
		rates[i] = *model.ToDomain()
	}
	return rates
}

// Ensure GormExchangeRateRepository implements ExchangeRateRepository
var _ channel.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
