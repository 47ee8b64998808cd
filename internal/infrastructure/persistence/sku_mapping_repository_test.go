package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/persistence/models"
)

// setupChannelTestDB creates an in-memory SQLite database with the full
// channel schema for repository tests.
func setupChannelTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SKUMappingModel{},
		&models.SyncJobModel{},
		&models.ExchangeRateModel{},
		&models.WebhookEventModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestMapping(t *testing.T, sku string) *channel.SKUMapping {
	t.Helper()
	mapping, err := channel.NewSKUMapping(sku,
		channel.ProductRef{ProductID: "nv-" + sku},
		channel.ProductRef{ProductID: "sf-" + sku, VariantID: "v-" + sku},
		decimal.NewFromFloat(1.15))
	require.NoError(t, err)
	return mapping
}

func TestGormSKUMappingRepository_SaveAndFind(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormSKUMappingRepository(db)
	ctx := context.Background()

	mapping := newTestMapping(t, "WIDGET-1")
	require.NoError(t, repo.Save(ctx, mapping))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, mapping.ID)
		require.NoError(t, err)
		assert.Equal(t, "WIDGET-1", found.SKU)
		assert.Equal(t, "nv-WIDGET-1", found.MarketplaceRef.ProductID)
		assert.Equal(t, "v-WIDGET-1", found.StorefrontRef.VariantID)
		assert.True(t, found.PriceMargin.Equal(decimal.NewFromFloat(1.15)))
		assert.True(t, found.IsActive)
		assert.Equal(t, channel.SyncStatusPending, found.SyncStatus)
	})

	t.Run("finds active by sku", func(t *testing.T) {
		found, err := repo.FindActiveBySKU(ctx, "WIDGET-1")
		require.NoError(t, err)
		assert.Equal(t, mapping.ID, found.ID)
	})

	t.Run("returns mapping not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, channel.ErrMappingNotFound)
	})

	t.Run("returns mapping not found for unknown sku", func(t *testing.T) {
		_, err := repo.FindActiveBySKU(ctx, "NOPE")
		assert.ErrorIs(t, err, channel.ErrMappingNotFound)
	})
}

func TestGormSKUMappingRepository_ActiveScoping(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormSKUMappingRepository(db)
	ctx := context.Background()

	active := newTestMapping(t, "ACTIVE-1")
	require.NoError(t, repo.Save(ctx, active))

	inactive := newTestMapping(t, "GONE-1")
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	t.Run("deactivated mappings are excluded from active lookups", func(t *testing.T) {
		_, err := repo.FindActiveBySKU(ctx, "GONE-1")
		assert.ErrorIs(t, err, channel.ErrMappingNotFound)

		all, err := repo.FindAllActive(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "ACTIVE-1", all[0].SKU)
	})

	t.Run("deactivated mappings remain findable by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, inactive.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive)
		assert.NotNil(t, found.DeactivatedAt)
	})

	t.Run("exists reflects only active mappings", func(t *testing.T) {
		exists, err := repo.ExistsActiveBySKU(ctx, "ACTIVE-1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsActiveBySKU(ctx, "GONE-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormSKUMappingRepository_FindActiveBySKUs(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormSKUMappingRepository(db)
	ctx := context.Background()

	for _, sku := range []string{"A-1", "B-2", "C-3"} {
		require.NoError(t, repo.Save(ctx, newTestMapping(t, sku)))
	}

	found, err := repo.FindActiveBySKUs(ctx, []string{"A-1", "C-3", "MISSING"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindActiveBySKUs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGormSKUMappingRepository_FindActiveByPlatformRef(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormSKUMappingRepository(db)
	ctx := context.Background()

	mapping := newTestMapping(t, "REF-1")
	require.NoError(t, repo.Save(ctx, mapping))

	t.Run("resolves through the marketplace product id", func(t *testing.T) {
		found, err := repo.FindActiveByPlatformRef(ctx, channel.PlatformNaver, "nv-REF-1")
		require.NoError(t, err)
		assert.Equal(t, "REF-1", found.SKU)
	})

	t.Run("resolves through the storefront product id", func(t *testing.T) {
		found, err := repo.FindActiveByPlatformRef(ctx, channel.PlatformShopify, "sf-REF-1")
		require.NoError(t, err)
		assert.Equal(t, "REF-1", found.SKU)
	})

	t.Run("does not match across platforms", func(t *testing.T) {
		_, err := repo.FindActiveByPlatformRef(ctx, channel.PlatformShopify, "nv-REF-1")
		assert.ErrorIs(t, err, channel.ErrMappingNotFound)
	})
}

func TestGormSKUMappingRepository_FindAll(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormSKUMappingRepository(db)
	ctx := context.Background()

	for _, sku := range []string{"P-1", "P-2", "P-3", "P-4", "P-5"} {
		require.NoError(t, repo.Save(ctx, newTestMapping(t, sku)))
	}
	errored := newTestMapping(t, "P-6")
	errored.MarkSyncFailed(time.Now(), "platform unavailable")
	require.NoError(t, repo.Save(ctx, errored))

	t.Run("paginates with total count", func(t *testing.T) {
		page, total, err := repo.FindAll(ctx, channel.SKUMappingFilter{Page: 1, PageSize: 4})
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		assert.Len(t, page, 4)

		page, _, err = repo.FindAll(ctx, channel.SKUMappingFilter{Page: 2, PageSize: 4})
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("filters by sync status", func(t *testing.T) {
		status := channel.SyncStatusError
		page, total, err := repo.FindAll(ctx, channel.SKUMappingFilter{SyncStatus: &status, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, page, 1)
		assert.Equal(t, "P-6", page[0].SKU)
	})
}

func TestGormSKUMappingRepository_MarkSyncResult(t *testing.T) {
	db := setupChannelTestDB(t)
	repo := NewGormSKUMappingRepository(db)
	ctx := context.Background()

	mapping := newTestMapping(t, "MARK-1")
	require.NoError(t, repo.Save(ctx, mapping))

	t.Run("records a successful reconciliation", func(t *testing.T) {
		ts := time.Now()
		require.NoError(t, repo.MarkSyncResult(ctx, "MARK-1", channel.SyncStatusSynced, ts, ""))

		found, err := repo.FindActiveBySKU(ctx, "MARK-1")
		require.NoError(t, err)
		assert.Equal(t, channel.SyncStatusSynced, found.SyncStatus)
		require.NotNil(t, found.LastSyncedAt)
		assert.Empty(t, found.LastSyncError)
	})

	t.Run("records a failed reconciliation with detail", func(t *testing.T) {
		require.NoError(t, repo.MarkSyncResult(ctx, "MARK-1", channel.SyncStatusError, time.Now(), "rate limited"))

		found, err := repo.FindActiveBySKU(ctx, "MARK-1")
		require.NoError(t, err)
		assert.Equal(t, channel.SyncStatusError, found.SyncStatus)
		assert.Equal(t, "rate limited", found.LastSyncError)
	})

	t.Run("returns mapping not found for unknown sku", func(t *testing.T) {
		err := repo.MarkSyncResult(ctx, "UNKNOWN", channel.SyncStatusSynced, time.Now(), "")
		assert.ErrorIs(t, err, channel.ErrMappingNotFound)
	})
}
