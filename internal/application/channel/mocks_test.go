package channel

import (
	"context"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockSKUMappingRepository is a mock implementation of SKUMappingRepository
type MockSKUMappingRepository struct {
	mock.Mock
}

func (m *MockSKUMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SKUMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SKUMapping), args.Error(1)
}

func (m *MockSKUMappingRepository) FindActiveBySKU(ctx context.Context, sku string) (*channel.SKUMapping, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SKUMapping), args.Error(1)
}

func (m *MockSKUMappingRepository) FindAllActive(ctx context.Context) ([]channel.SKUMapping, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SKUMapping), args.Error(1)
}

func (m *MockSKUMappingRepository) FindActiveBySKUs(ctx context.Context, skus []string) ([]channel.SKUMapping, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SKUMapping), args.Error(1)
}

func (m *MockSKUMappingRepository) FindActiveByPlatformRef(ctx context.Context, platform channel.PlatformCode, productID string) (*channel.SKUMapping, error) {
	args := m.Called(ctx, platform, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SKUMapping), args.Error(1)
}

func (m *MockSKUMappingRepository) FindAll(ctx context.Context, filter channel.SKUMappingFilter) ([]channel.SKUMapping, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]channel.SKUMapping), args.Get(1).(int64), args.Error(2)
}

func (m *MockSKUMappingRepository) ExistsActiveBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockSKUMappingRepository) Save(ctx context.Context, mapping *channel.SKUMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockSKUMappingRepository) MarkSyncResult(ctx context.Context, sku string, status channel.SyncStatus, ts time.Time, errMsg string) error {
	args := m.Called(ctx, sku, status, ts, errMsg)
	return args.Error(0)
}

// MockSyncJobRepository is a mock implementation of SyncJobRepository
type MockSyncJobRepository struct {
	mock.Mock
}

func (m *MockSyncJobRepository) Save(ctx context.Context, job *channel.SyncJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockSyncJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SyncJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SyncJob), args.Error(1)
}

func (m *MockSyncJobRepository) FindRecent(ctx context.Context, limit int) ([]channel.SyncJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SyncJob), args.Error(1)
}

func (m *MockSyncJobRepository) FindRunning(ctx context.Context) (*channel.SyncJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SyncJob), args.Error(1)
}

// MockCommercePlatform is a mock implementation of CommercePlatform
type MockCommercePlatform struct {
	mock.Mock
	code channel.PlatformCode
}

func NewMockCommercePlatform(code channel.PlatformCode) *MockCommercePlatform {
	return &MockCommercePlatform{code: code}
}

func (m *MockCommercePlatform) PlatformCode() channel.PlatformCode {
	return m.code
}

func (m *MockCommercePlatform) ReadInventory(ctx context.Context, ref channel.ProductRef) (*channel.InventorySnapshot, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.InventorySnapshot), args.Error(1)
}

func (m *MockCommercePlatform) WriteInventory(ctx context.Context, ref channel.ProductRef, quantity int64) error {
	args := m.Called(ctx, ref, quantity)
	return args.Error(0)
}

func (m *MockCommercePlatform) ReadPrice(ctx context.Context, ref channel.ProductRef) (decimal.Decimal, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCommercePlatform) WritePrice(ctx context.Context, ref channel.ProductRef, amount decimal.Decimal) error {
	args := m.Called(ctx, ref, amount)
	return args.Error(0)
}

// MockExchangeRateService is a mock implementation of ExchangeRateService
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) CurrentRate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	args := m.Called(ctx, base, target)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExchangeRateService) SetManualRate(ctx context.Context, input SetManualRateInput) (*channel.ExchangeRate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) RecordQuotedRate(ctx context.Context, input RecordQuotedRateInput) (*channel.ExchangeRate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) RecentRates(ctx context.Context, base, target string, limit int) ([]channel.ExchangeRate, error) {
	args := m.Called(ctx, base, target, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.ExchangeRate), args.Error(1)
}

// MockExchangeRateRepository is a mock implementation of ExchangeRateRepository
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) Save(ctx context.Context, rate *channel.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindValidAt(ctx context.Context, base, target string, now time.Time) ([]channel.ExchangeRate, error) {
	args := m.Called(ctx, base, target, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindRecent(ctx context.Context, base, target string, limit int) ([]channel.ExchangeRate, error) {
	args := m.Called(ctx, base, target, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.ExchangeRate), args.Error(1)
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Save(ctx context.Context, event *channel.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, ts time.Time) error {
	args := m.Called(ctx, id, ts)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkSuppressed(ctx context.Context, id uuid.UUID, ts time.Time, reason string) error {
	args := m.Called(ctx, id, ts, reason)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, id uuid.UUID, ts time.Time, errMsg string) error {
	args := m.Called(ctx, id, ts, errMsg)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) FindRecent(ctx context.Context, limit int) ([]channel.WebhookEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockActionApplier is a mock implementation of ActionApplier
type MockActionApplier struct {
	mock.Mock
}

func (m *MockActionApplier) ApplyWebhookAction(ctx context.Context, action channel.CorrectiveAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

// MockBroadcaster is a mock implementation of Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Publish(ctx context.Context, event channel.ActionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
