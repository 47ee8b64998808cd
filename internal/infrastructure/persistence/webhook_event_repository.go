package persistence

import (
	"context"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Save creates a log entry
func (r *GormWebhookEventRepository) Save(ctx context.Context, event *channel.WebhookEvent) error {
	model := models.WebhookEventModelFromDomain(event)
	return r.db.WithContext(ctx).Create(model).Error
}

// MarkProcessed marks an entry processed
func (r *GormWebhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, ts time.Time) error {
	return r.markOutcome(ctx, id, channel.WebhookStatusProcessed, ts, "")
}

// MarkSuppressed marks an entry suppressed with the reason
func (r *GormWebhookEventRepository) MarkSuppressed(ctx context.Context, id uuid.UUID, ts time.Time, reason string) error {
	return r.markOutcome(ctx, id, channel.WebhookStatusSuppressed, ts, reason)
}

// MarkFailed marks an entry failed with error detail
func (r *GormWebhookEventRepository) MarkFailed(ctx context.Context, id uuid.UUID, ts time.Time, errMsg string) error {
	return r.markOutcome(ctx, id, channel.WebhookStatusFailed, ts, errMsg)
}

func (r *GormWebhookEventRepository) markOutcome(ctx context.Context, id uuid.UUID, status channel.WebhookEventStatus, ts time.Time, detail string) error {
	result := r.db.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"error":        detail,
			"processed_at": ts,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindRecent returns the most recent entries, newest first
func (r *GormWebhookEventRepository) FindRecent(ctx context.Context, limit int) ([]channel.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var eventModels []models.WebhookEventModel
	if err := r.db.WithContext(ctx).
		Order("received_at DESC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]channel.WebhookEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events, nil
}

// DeleteOlderThan purges entries received before the cutoff
func (r *GormWebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.WebhookEventModel{}, "received_at < ?", cutoff)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormWebhookEventRepository implements WebhookEventRepository
var _ channel.WebhookEventRepository = (*GormWebhookEventRepository)(nil)
