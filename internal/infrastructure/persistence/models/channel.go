package models

import (
	"encoding/json"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// SKUMappingModel
// ---------------------------------------------------------------------------

// SKUMappingModel is the persistence model for the SKUMapping domain entity.
type SKUMappingModel struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primary_key"`
	SKU                  string             `gorm:"type:varchar(64);not null;index:idx_sku_mapping_sku"`
	MarketplaceProductID string             `gorm:"type:varchar(100);not null;index:idx_sku_mapping_marketplace_product"`
	MarketplaceVariantID string             `gorm:"type:varchar(100)"`
	StorefrontProductID  string             `gorm:"type:varchar(100);not null;index:idx_sku_mapping_storefront_product"`
	StorefrontVariantID  string             `gorm:"type:varchar(100)"`
	PriceMargin          decimal.Decimal    `gorm:"type:decimal(6,3);not null"`
	IsActive             bool               `gorm:"not null;default:true;index:idx_sku_mapping_active"`
	SyncStatus           channel.SyncStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	LastSyncedAt         *time.Time
	LastSyncError        string `gorm:"type:text"`
	DeactivatedAt        *time.Time
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SKUMappingModel) TableName() string {
	return "sku_mappings"
}

// ToDomain converts the persistence model to a domain SKUMapping entity.
func (m *SKUMappingModel) ToDomain() *channel.SKUMapping {
	return &channel.SKUMapping{
		ID:  m.ID,
		SKU: m.SKU,
		MarketplaceRef: channel.ProductRef{
			ProductID: m.MarketplaceProductID,
			VariantID: m.MarketplaceVariantID,
		},
		StorefrontRef: channel.ProductRef{
			ProductID: m.StorefrontProductID,
			VariantID: m.StorefrontVariantID,
		},
		PriceMargin:   m.PriceMargin,
		IsActive:      m.IsActive,
		SyncStatus:    m.SyncStatus,
		LastSyncedAt:  m.LastSyncedAt,
		LastSyncError: m.LastSyncError,
		DeactivatedAt: m.DeactivatedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SKUMapping entity.
func (m *SKUMappingModel) FromDomain(mapping *channel.SKUMapping) {
	m.ID = mapping.ID
	m.SKU = mapping.SKU
	m.MarketplaceProductID = mapping.MarketplaceRef.ProductID
	m.MarketplaceVariantID = mapping.MarketplaceRef.VariantID
	m.StorefrontProductID = mapping.StorefrontRef.ProductID
	m.StorefrontVariantID = mapping.StorefrontRef.VariantID
	m.PriceMargin = mapping.PriceMargin
	m.IsActive = mapping.IsActive
	m.SyncStatus = mapping.SyncStatus
	m.LastSyncedAt = mapping.LastSyncedAt
	m.LastSyncError = mapping.LastSyncError
	m.DeactivatedAt = mapping.DeactivatedAt
	m.CreatedAt = mapping.CreatedAt
	m.UpdatedAt = mapping.UpdatedAt
}

// SKUMappingModelFromDomain creates a new persistence model from a domain SKUMapping entity.
func SKUMappingModelFromDomain(mapping *channel.SKUMapping) *SKUMappingModel {
	m := &SKUMappingModel{}
	m.FromDomain(mapping)
	return m
}

// ---------------------------------------------------------------------------
// SyncJobModel
// ---------------------------------------------------------------------------

// SyncJobModel is the persistence model for the SyncJob aggregate.
type SyncJobModel struct {
	ID             uuid.UUID             `gorm:"type:uuid;primary_key"`
	Kind           channel.SyncJobKind   `gorm:"type:varchar(20);not null"`
	Status         channel.SyncJobStatus `gorm:"type:varchar(20);not null;index:idx_sync_job_status"`
	TotalCount     int                   `gorm:"not null;default:0"`
	SuccessCount   int                   `gorm:"not null;default:0"`
	FailedCount    int                   `gorm:"not null;default:0"`
	SkippedCount   int                   `gorm:"not null;default:0"`
	ItemErrorsJSON string                `gorm:"type:jsonb;column:item_errors"`
	Error          string                `gorm:"type:text"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time `gorm:"not null;index:idx_sync_job_created"`
}

// TableName returns the table name for GORM
func (SyncJobModel) TableName() string {
	return "sync_jobs"
}

// ToDomain converts the persistence model to a domain SyncJob aggregate.
func (m *SyncJobModel) ToDomain() *channel.SyncJob {
	job := &channel.SyncJob{
		ID:           m.ID,
		Kind:         m.Kind,
		Status:       m.Status,
		TotalCount:   m.TotalCount,
		SuccessCount: m.SuccessCount,
		FailedCount:  m.FailedCount,
		SkippedCount: m.SkippedCount,
		ItemErrors:   make([]channel.SyncItemError, 0),
		Error:        m.Error,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
		CreatedAt:    m.CreatedAt,
	}

	if m.ItemErrorsJSON != "" {
		var itemErrors []channel.SyncItemError
		if err := json.Unmarshal([]byte(m.ItemErrorsJSON), &itemErrors); err == nil {
			job.ItemErrors = itemErrors
		}
	}

	return job
}

// FromDomain populates the persistence model from a domain SyncJob aggregate.
func (m *SyncJobModel) FromDomain(job *channel.SyncJob) {
	m.ID = job.ID
	m.Kind = job.Kind
	m.Status = job.Status
	m.TotalCount = job.TotalCount
	m.SuccessCount = job.SuccessCount
	m.FailedCount = job.FailedCount
	m.SkippedCount = job.SkippedCount
	m.Error = job.Error
	m.StartedAt = job.StartedAt
	m.CompletedAt = job.CompletedAt
	m.CreatedAt = job.CreatedAt

	if len(job.ItemErrors) > 0 {
		if jsonBytes, err := json.Marshal(job.ItemErrors); err == nil {
			m.ItemErrorsJSON = string(jsonBytes)
		}
	} else {
		m.ItemErrorsJSON = "[]"
	}
}

// SyncJobModelFromDomain creates a new persistence model from a domain SyncJob aggregate.
func SyncJobModelFromDomain(job *channel.SyncJob) *SyncJobModel {
	m := &SyncJobModel{}
	m.FromDomain(job)
	return m
}

// ---------------------------------------------------------------------------
// ExchangeRateModel
// ---------------------------------------------------------------------------

// ExchangeRateModel is the persistence model for the immutable ExchangeRate record.
type ExchangeRateModel struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key"`
	BaseCurrency   string             `gorm:"type:varchar(3);not null;index:idx_exchange_rate_pair,priority:1"`
	TargetCurrency string             `gorm:"type:varchar(3);not null;index:idx_exchange_rate_pair,priority:2"`
	Rate           decimal.Decimal    `gorm:"type:decimal(18,8);not null"`
	Source         channel.RateSource `gorm:"type:varchar(10);not null"`
	Reason         string             `gorm:"type:text"`
	OperatorID     string             `gorm:"type:varchar(100)"`
	ValidFrom      time.Time          `gorm:"not null"`
	ValidUntil     time.Time          `gorm:"not null"`
	CreatedAt      time.Time          `gorm:"not null;index:idx_exchange_rate_created"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the persistence model to a domain ExchangeRate record.
func (m *ExchangeRateModel) ToDomain() *channel.ExchangeRate {
	return &channel.ExchangeRate{
		ID:             m.ID,
		BaseCurrency:   m.BaseCurrency,
		TargetCurrency: m.TargetCurrency,
		Rate:           m.Rate,
		Source:         m.Source,
		Reason:         m.Reason,
		OperatorID:     m.OperatorID,
		ValidFrom:      m.ValidFrom,
		ValidUntil:     m.ValidUntil,
		CreatedAt:      m.CreatedAt,
	}
}

// ExchangeRateModelFromDomain creates a new persistence model from a domain ExchangeRate record.
func ExchangeRateModelFromDomain(rate *channel.ExchangeRate) *ExchangeRateModel {
	return &ExchangeRateModel{
		ID:             rate.ID,
		BaseCurrency:   rate.BaseCurrency,
		TargetCurrency: rate.TargetCurrency,
		Rate:           rate.Rate,
		Source:         rate.Source,
		Reason:         rate.Reason,
		OperatorID:     rate.OperatorID,
		ValidFrom:      rate.ValidFrom,
		ValidUntil:     rate.ValidUntil,
		CreatedAt:      rate.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// WebhookEventModel
// ---------------------------------------------------------------------------

// WebhookEventModel is the persistence model for the webhook event log.
type WebhookEventModel struct {
	ID          uuid.UUID                  `gorm:"type:uuid;primary_key"`
	Platform    channel.PlatformCode       `gorm:"type:varchar(20);not null"`
	SKU         string                     `gorm:"type:varchar(64);index:idx_webhook_event_sku"`
	ExternalRef string                     `gorm:"type:varchar(100)"`
	Kind        channel.WebhookEventKind   `gorm:"type:varchar(20);not null"`
	Payload     string                     `gorm:"type:jsonb"`
	Status      channel.WebhookEventStatus `gorm:"type:varchar(20);not null;index:idx_webhook_event_status"`
	Error       string                     `gorm:"type:text"`
	ReceivedAt  time.Time                  `gorm:"not null;index:idx_webhook_event_received"`
	ProcessedAt *time.Time
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts the persistence model to a domain WebhookEvent entry.
func (m *WebhookEventModel) ToDomain() *channel.WebhookEvent {
	return &channel.WebhookEvent{
		ID:          m.ID,
		Platform:    m.Platform,
		SKU:         m.SKU,
		ExternalRef: m.ExternalRef,
		Kind:        m.Kind,
		Payload:     json.RawMessage(m.Payload),
		Status:      m.Status,
		Error:       m.Error,
		ReceivedAt:  m.ReceivedAt,
		ProcessedAt: m.ProcessedAt,
	}
}

// WebhookEventModelFromDomain creates a new persistence model from a domain WebhookEvent entry.
func WebhookEventModelFromDomain(event *channel.WebhookEvent) *WebhookEventModel {
	return &WebhookEventModel{
		ID:          event.ID,
		Platform:    event.Platform,
		SKU:         event.SKU,
		ExternalRef: event.ExternalRef,
		Kind:        event.Kind,
		Payload:     string(event.Payload),
		Status:      event.Status,
		Error:       event.Error,
		ReceivedAt:  event.ReceivedAt,
		ProcessedAt: event.ProcessedAt,
	}
}
