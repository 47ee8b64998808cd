package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// Engine Configuration
// ---------------------------------------------------------------------------

// EngineConfig tunes the reconciliation engine.
type EngineConfig struct {
	// Workers bounds concurrent item processing within a pass
	Workers int
	// PassTimeout is the ceiling for a whole pass; items not processed when
	// it expires are recorded as skipped and the job still completes
	PassTimeout time.Duration
	// ItemTimeout bounds the platform round trips of a single item
	ItemTimeout time.Duration
	// StalenessThreshold is the snapshot age beyond which a side loses the
	// quantity comparison to the fresher side; zero disables staleness
	StalenessThreshold time.Duration
	// QuantityNoiseThreshold is the minimum quantity delta that justifies a
	// write; zero means any difference is corrected
	QuantityNoiseThreshold int64
	// PriceNoiseThreshold is the minimum price delta that justifies a write
	PriceNoiseThreshold decimal.Decimal
	// BaseCurrency is the marketplace currency (e.g. KRW)
	BaseCurrency string
	// TargetCurrency is the storefront currency (e.g. USD)
	TargetCurrency string
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.ItemTimeout <= 0 {
		c.ItemTimeout = 30 * time.Second
	}
	if c.PriceNoiseThreshold.IsZero() {
		c.PriceNoiseThreshold = decimal.RequireFromString("0.01")
	}
	if c.BaseCurrency == "" {
		c.BaseCurrency = "KRW"
	}
	if c.TargetCurrency == "" {
		c.TargetCurrency = "USD"
	}
	return c
}

// Metrics receives engine-level counters. The telemetry implementation lives
// in the infrastructure layer.
type Metrics interface {
	RecordPass(ctx context.Context, kind string)
	RecordWrite(ctx context.Context, platform, dimension string)
	RecordItemFailure(ctx context.Context, platform string)
}

// NopMetrics discards all counters.
type NopMetrics struct{}

func (NopMetrics) RecordPass(context.Context, string)          {}
func (NopMetrics) RecordWrite(context.Context, string, string) {}
func (NopMetrics) RecordItemFailure(context.Context, string)   {}

// ---------------------------------------------------------------------------
// ReconcileService
// ---------------------------------------------------------------------------

// ActionApplier applies a single webhook-derived corrective action. The
// webhook pipeline depends on this narrow view of the engine.
type ActionApplier interface {
	ApplyWebhookAction(ctx context.Context, action channel.CorrectiveAction) error
}

// ReconcileService runs reconciliation passes between the marketplace and the
// storefront. Passes are synchronous: the trigger call returns the finished
// job document.
type ReconcileService struct {
	mappings    channel.SKUMappingRepository
	jobs        channel.SyncJobRepository
	marketplace channel.CommercePlatform
	storefront  channel.CommercePlatform
	rates       ExchangeRateService
	coordinator *Coordinator
	broadcaster channel.Broadcaster
	metrics     Metrics
	logger      *zap.Logger
	config      EngineConfig
}

// NewReconcileService creates a ReconcileService.
func NewReconcileService(
	mappings channel.SKUMappingRepository,
	jobs channel.SyncJobRepository,
	marketplace channel.CommercePlatform,
	storefront channel.CommercePlatform,
	rates ExchangeRateService,
	coordinator *Coordinator,
	broadcaster channel.Broadcaster,
	metrics Metrics,
	logger *zap.Logger,
	config EngineConfig,
) *ReconcileService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ReconcileService{
		mappings:    mappings,
		jobs:        jobs,
		marketplace: marketplace,
		storefront:  storefront,
		rates:       rates,
		coordinator: coordinator,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
		config:      config.withDefaults(),
	}
}

// ---------------------------------------------------------------------------
// Pass Triggers
// ---------------------------------------------------------------------------

// TriggerFullSync reconciles every active mapping. Only one pass may run in
// the process at a time; a concurrent trigger fails synchronously with
// ErrSyncInProgress and creates no job document.
func (s *ReconcileService) TriggerFullSync(ctx context.Context) (*channel.SyncJob, error) {
	if !s.coordinator.TryAcquireRun() {
		return nil, channel.ErrSyncInProgress
	}
	defer s.coordinator.ReleaseRun()

	mappings, err := s.mappings.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active mappings: %w", err)
	}
	return s.runPass(ctx, channel.SyncJobKindFull, mappings)
}

// TriggerManualSync reconciles the requested subset of SKUs.
func (s *ReconcileService) TriggerManualSync(ctx context.Context, skus []string) (*channel.SyncJob, error) {
	if len(skus) == 0 {
		return nil, channel.ErrValidation
	}
	for _, sku := range skus {
		if err := channel.ValidateSKU(sku); err != nil {
			return nil, err
		}
	}

	if !s.coordinator.TryAcquireRun() {
		return nil, channel.ErrSyncInProgress
	}
	defer s.coordinator.ReleaseRun()

	mappings, err := s.mappings.FindActiveBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	if len(mappings) == 0 {
		return nil, channel.ErrMappingNotFound
	}
	return s.runPass(ctx, channel.SyncJobKindPartial, mappings)
}

// SyncOne reconciles a single SKU.
func (s *ReconcileService) SyncOne(ctx context.Context, sku string) (*channel.SyncJob, error) {
	if err := channel.ValidateSKU(sku); err != nil {
		return nil, err
	}

	if !s.coordinator.TryAcquireRun() {
		return nil, channel.ErrSyncInProgress
	}
	defer s.coordinator.ReleaseRun()

	mapping, err := s.mappings.FindActiveBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return s.runPass(ctx, channel.SyncJobKindManual, []channel.SKUMapping{*mapping})
}

// ---------------------------------------------------------------------------
// Pass Execution
// ---------------------------------------------------------------------------

type itemOutcome int

const (
	outcomeSuccess itemOutcome = iota
	outcomeSkip
	outcomeFailure
)

type itemResult struct {
	sku     string
	outcome itemOutcome
	err     error
}

// runPass executes one pass over the given mappings. The run lock is already
// held by the caller. FAILED is reserved for the engine being unable to
// persist its own bookkeeping; item failures accumulate in the job document
// and the job still completes.
func (s *ReconcileService) runPass(ctx context.Context, kind channel.SyncJobKind, mappings []channel.SKUMapping) (*channel.SyncJob, error) {
	job := channel.NewSyncJob(kind)
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}

	if err := job.Start(len(mappings)); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("persist running job: %w", err)
	}

	s.metrics.RecordPass(ctx, string(kind))
	s.logger.Info("sync pass started",
		zap.String("jobId", job.ID.String()),
		zap.String("kind", string(kind)),
		zap.Int("total", len(mappings)))

	passCtx := ctx
	if s.config.PassTimeout > 0 {
		var cancel context.CancelFunc
		passCtx, cancel = context.WithTimeout(ctx, s.config.PassTimeout)
		defer cancel()
	}

	for result := range s.processItems(passCtx, job.ID, mappings) {
		switch result.outcome {
		case outcomeSuccess:
			job.RecordItemSuccess()
		case outcomeSkip:
			job.RecordItemSkip()
		case outcomeFailure:
			job.RecordItemFailure(result.sku, result.err)
		}
	}

	if err := job.Complete(); err != nil {
		return nil, err
	}
	// Bookkeeping persistence is the one thing that fails a job. The save
	// below uses the parent context so a pass timeout does not corrupt the
	// ledger.
	if err := s.jobs.Save(ctx, job); err != nil {
		_ = job.Fail(fmt.Sprintf("persist job result: %v", err))
		s.logger.Error("failed to persist sync job result",
			zap.String("jobId", job.ID.String()), zap.Error(err))
		return job, fmt.Errorf("persist job result: %w", err)
	}

	s.logger.Info("sync pass finished",
		zap.String("jobId", job.ID.String()),
		zap.Int("success", job.SuccessCount),
		zap.Int("failed", job.FailedCount),
		zap.Int("skipped", job.SkippedCount))
	return job, nil
}

// processItems fans mappings out to a bounded worker pool and streams per-item
// results back. Items dequeued after the pass context expired are reported as
// skipped without touching either platform.
func (s *ReconcileService) processItems(ctx context.Context, jobID uuid.UUID, mappings []channel.SKUMapping) <-chan itemResult {
	in := make(chan channel.SKUMapping)
	out := make(chan itemResult, len(mappings))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range in {
				if ctx.Err() != nil {
					out <- itemResult{sku: m.SKU, outcome: outcomeSkip, err: ctx.Err()}
					continue
				}
				out <- s.reconcileItem(ctx, jobID, m)
			}
		}()
	}

	go func() {
		for _, m := range mappings {
			in <- m
		}
		close(in)
		wg.Wait()
		close(out)
	}()

	return out
}

// reconcileItem brings one mapping's quantity and price to their computed
// targets. Platform state is read fresh on every pass; nothing carries over
// from earlier passes.
func (s *ReconcileService) reconcileItem(ctx context.Context, jobID uuid.UUID, m channel.SKUMapping) itemResult {
	release := s.coordinator.LockSKU(m.SKU)
	defer release()

	itemCtx := ctx
	if s.config.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, s.config.ItemTimeout)
		defer cancel()
	}

	now := time.Now()
	rateMissing := false

	market, err := s.marketplace.ReadInventory(itemCtx, m.MarketplaceRef)
	if err != nil {
		return s.failItem(ctx, m, channel.PlatformNaver, fmt.Errorf("read marketplace inventory: %w", err))
	}
	store, err := s.storefront.ReadInventory(itemCtx, m.StorefrontRef)
	if err != nil {
		return s.failItem(ctx, m, channel.PlatformShopify, fmt.Errorf("read storefront inventory: %w", err))
	}

	targetQty := s.targetQuantity(market, store, now)

	if delta(market.Quantity, targetQty) > s.config.QuantityNoiseThreshold {
		if err := s.marketplace.WriteInventory(itemCtx, m.MarketplaceRef, targetQty); err != nil {
			return s.failItem(ctx, m, channel.PlatformNaver, fmt.Errorf("write marketplace inventory: %w", err))
		}
		s.afterWrite(ctx, jobID, m.SKU, channel.PlatformNaver, channel.ActionEventInventoryUpdate, fmt.Sprintf("%d", targetQty))
	}
	if delta(store.Sellable(), targetQty) > s.config.QuantityNoiseThreshold {
		// The comparison is on sellable stock, so the write must land there
		// too: the storefront stores available, sellable = available - committed.
		available := targetQty + store.Committed
		if err := s.storefront.WriteInventory(itemCtx, m.StorefrontRef, available); err != nil {
			return s.failItem(ctx, m, channel.PlatformShopify, fmt.Errorf("write storefront inventory: %w", err))
		}
		s.afterWrite(ctx, jobID, m.SKU, channel.PlatformShopify, channel.ActionEventInventoryUpdate, fmt.Sprintf("%d", targetQty))
	}

	// Price flows one way, marketplace to storefront. A missing rate skips
	// price work only; the inventory writes above already happened.
	rate, err := s.rates.CurrentRate(itemCtx, s.config.BaseCurrency, s.config.TargetCurrency)
	switch {
	case err == nil:
		srcPrice, err := s.marketplace.ReadPrice(itemCtx, m.MarketplaceRef)
		if err != nil {
			return s.failItem(ctx, m, channel.PlatformNaver, fmt.Errorf("read marketplace price: %w", err))
		}
		targetPrice, err := channel.CalculateTargetPrice(srcPrice, rate, m.PriceMargin)
		if err != nil {
			return s.failItem(ctx, m, channel.PlatformShopify, fmt.Errorf("compute target price: %w", err))
		}
		current, err := s.storefront.ReadPrice(itemCtx, m.StorefrontRef)
		if err != nil {
			return s.failItem(ctx, m, channel.PlatformShopify, fmt.Errorf("read storefront price: %w", err))
		}
		if current.Sub(targetPrice).Abs().GreaterThan(s.config.PriceNoiseThreshold) {
			if err := s.storefront.WritePrice(itemCtx, m.StorefrontRef, targetPrice); err != nil {
				return s.failItem(ctx, m, channel.PlatformShopify, fmt.Errorf("write storefront price: %w", err))
			}
			s.afterWrite(ctx, jobID, m.SKU, channel.PlatformShopify, channel.ActionEventPriceUpdate, targetPrice.StringFixed(2))
		}
	case isRateUnavailable(err):
		rateMissing = true
		s.logger.Warn("exchange rate unavailable, price sync skipped",
			zap.String("sku", m.SKU))
	default:
		return s.failItem(ctx, m, channel.PlatformShopify, fmt.Errorf("resolve exchange rate: %w", err))
	}

	if err := s.mappings.MarkSyncResult(ctx, m.SKU, channel.SyncStatusSynced, time.Now(), ""); err != nil {
		s.logger.Error("failed to record mapping sync result",
			zap.String("sku", m.SKU), zap.Error(err))
	}

	if rateMissing {
		return itemResult{sku: m.SKU, outcome: outcomeSkip, err: channel.ErrExchangeRateUnavailable}
	}
	return itemResult{sku: m.SKU, outcome: outcomeSuccess}
}

// targetQuantity computes the quantity both platforms should converge to.
// With both snapshots fresh the conservative minimum wins; a side stale
// beyond the threshold loses to the fresher side.
func (s *ReconcileService) targetQuantity(market, store *channel.InventorySnapshot, now time.Time) int64 {
	marketStale := market.StaleAt(s.config.StalenessThreshold, now)
	storeStale := store.StaleAt(s.config.StalenessThreshold, now)

	switch {
	case marketStale && !storeStale:
		return store.Sellable()
	case storeStale && !marketStale:
		return market.Quantity
	default:
		return min64(market.Quantity, store.Sellable())
	}
}

func (s *ReconcileService) failItem(ctx context.Context, m channel.SKUMapping, platform channel.PlatformCode, err error) itemResult {
	s.metrics.RecordItemFailure(ctx, platform.String())
	if mErr := s.mappings.MarkSyncResult(ctx, m.SKU, channel.SyncStatusError, time.Now(), err.Error()); mErr != nil {
		s.logger.Error("failed to record mapping sync result",
			zap.String("sku", m.SKU), zap.Error(mErr))
	}
	return itemResult{sku: m.SKU, outcome: outcomeFailure, err: err}
}

// afterWrite records the counters and realtime event for one completed
// corrective write. Broadcast failures are logged and dropped.
func (s *ReconcileService) afterWrite(ctx context.Context, jobID uuid.UUID, sku string, platform channel.PlatformCode, eventType, value string) {
	dimension := "inventory"
	if eventType == channel.ActionEventPriceUpdate {
		dimension = "price"
	}
	s.metrics.RecordWrite(ctx, platform.String(), dimension)

	if s.broadcaster == nil {
		return
	}
	event := channel.ActionEvent{
		Type:       eventType,
		SKU:        sku,
		Platform:   platform,
		Value:      value,
		JobID:      jobID,
		OccurredAt: time.Now(),
	}
	if err := s.broadcaster.Publish(ctx, event); err != nil {
		s.logger.Warn("realtime publish failed",
			zap.String("sku", sku), zap.String("type", eventType), zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Webhook Actions
// ---------------------------------------------------------------------------

// ApplyWebhookAction reconciles one webhook-derived delta. The originating
// platform is assumed correct, so only the other platform is written. The
// global run lock is bypassed; the per-SKU lock still serializes against a
// concurrent pass touching the same mapping.
func (s *ReconcileService) ApplyWebhookAction(ctx context.Context, action channel.CorrectiveAction) error {
	if err := action.Validate(); err != nil {
		return err
	}

	release := s.coordinator.LockSKU(action.SKU)
	defer release()

	mapping, err := s.mappings.FindActiveBySKU(ctx, action.SKU)
	if err != nil {
		return err
	}

	job := channel.NewSyncJob(channel.SyncJobKindWebhook)
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("create webhook job: %w", err)
	}
	if err := job.Start(1); err != nil {
		return err
	}

	applyErr := s.applyToOtherSide(ctx, job.ID, mapping, action)
	if applyErr != nil {
		job.RecordItemFailure(action.SKU, applyErr)
	} else {
		job.RecordItemSuccess()
	}

	if err := job.Complete(); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("persist webhook job: %w", err)
	}
	return applyErr
}

func (s *ReconcileService) applyToOtherSide(ctx context.Context, jobID uuid.UUID, m *channel.SKUMapping, action channel.CorrectiveAction) error {
	other := action.Origin.Other()
	client := s.clientFor(other)
	ref := m.RefFor(other)

	itemCtx := ctx
	if s.config.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, s.config.ItemTimeout)
		defer cancel()
	}

	if action.Quantity != nil {
		snapshot, err := client.ReadInventory(itemCtx, ref)
		if err != nil {
			return s.recordActionFailure(ctx, m, other, fmt.Errorf("read inventory: %w", err))
		}
		current := snapshot.Quantity
		write := *action.Quantity
		if other == channel.PlatformShopify {
			// Compare and write on the sellable dimension; the storefront
			// stores available = sellable + committed.
			current = snapshot.Sellable()
			write = *action.Quantity + snapshot.Committed
		}
		if delta(current, *action.Quantity) > s.config.QuantityNoiseThreshold {
			if err := client.WriteInventory(itemCtx, ref, write); err != nil {
				return s.recordActionFailure(ctx, m, other, fmt.Errorf("write inventory: %w", err))
			}
			s.afterWrite(ctx, jobID, m.SKU, other, channel.ActionEventInventoryUpdate, fmt.Sprintf("%d", *action.Quantity))
		}
	}

	// Price propagates only from the marketplace side.
	if action.Price != nil && action.Origin == channel.PlatformNaver {
		rate, err := s.rates.CurrentRate(itemCtx, s.config.BaseCurrency, s.config.TargetCurrency)
		if err != nil {
			return s.recordActionFailure(ctx, m, other, fmt.Errorf("resolve exchange rate: %w", err))
		}
		targetPrice, err := channel.CalculateTargetPrice(*action.Price, rate, m.PriceMargin)
		if err != nil {
			return s.recordActionFailure(ctx, m, other, fmt.Errorf("compute target price: %w", err))
		}
		current, err := s.storefront.ReadPrice(itemCtx, m.StorefrontRef)
		if err != nil {
			return s.recordActionFailure(ctx, m, other, fmt.Errorf("read storefront price: %w", err))
		}
		if current.Sub(targetPrice).Abs().GreaterThan(s.config.PriceNoiseThreshold) {
			if err := s.storefront.WritePrice(itemCtx, m.StorefrontRef, targetPrice); err != nil {
				return s.recordActionFailure(ctx, m, other, fmt.Errorf("write storefront price: %w", err))
			}
			s.afterWrite(ctx, jobID, m.SKU, channel.PlatformShopify, channel.ActionEventPriceUpdate, targetPrice.StringFixed(2))
		}
	}

	if err := s.mappings.MarkSyncResult(ctx, m.SKU, channel.SyncStatusSynced, time.Now(), ""); err != nil {
		s.logger.Error("failed to record mapping sync result",
			zap.String("sku", m.SKU), zap.Error(err))
	}
	return nil
}

func (s *ReconcileService) recordActionFailure(ctx context.Context, m *channel.SKUMapping, platform channel.PlatformCode, err error) error {
	s.metrics.RecordItemFailure(ctx, platform.String())
	if mErr := s.mappings.MarkSyncResult(ctx, m.SKU, channel.SyncStatusError, time.Now(), err.Error()); mErr != nil {
		s.logger.Error("failed to record mapping sync result",
			zap.String("sku", m.SKU), zap.Error(mErr))
	}
	return err
}

func (s *ReconcileService) clientFor(platform channel.PlatformCode) channel.CommercePlatform {
	if platform == channel.PlatformNaver {
		return s.marketplace
	}
	return s.storefront
}

// ---------------------------------------------------------------------------
// Status and Reports
// ---------------------------------------------------------------------------

// GetStatus returns the currently running job, if any, plus recent history.
func (s *ReconcileService) GetStatus(ctx context.Context) (*StatusReport, error) {
	running, err := s.jobs.FindRunning(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.jobs.FindRecent(ctx, 20)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		SyncRunning: running != nil,
		RecentJobs:  make([]JobSummary, 0, len(recent)),
	}
	if running != nil {
		summary := ToJobSummary(running)
		report.CurrentJob = &summary
	}
	for i := range recent {
		report.RecentJobs = append(report.RecentJobs, ToJobSummary(&recent[i]))
	}
	return report, nil
}

// GetDiscrepancyReport compares all active mappings without writing anything.
func (s *ReconcileService) GetDiscrepancyReport(ctx context.Context) (*DiscrepancyReport, error) {
	mappings, err := s.mappings.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active mappings: %w", err)
	}

	items := make([]DiscrepancyItem, len(mappings))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := range mappings {
		g.Go(func() error {
			items[i] = s.inspectItem(gCtx, mappings[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &DiscrepancyReport{GeneratedAt: time.Now()}
	for _, item := range items {
		if item.Error != "" || item.QuantityDelta != 0 || item.PriceDelta != "" {
			report.Items = append(report.Items, item)
		}
	}
	report.TotalChecked = len(items)
	return report, nil
}

func (s *ReconcileService) inspectItem(ctx context.Context, m channel.SKUMapping) DiscrepancyItem {
	item := DiscrepancyItem{SKU: m.SKU}

	market, err := s.marketplace.ReadInventory(ctx, m.MarketplaceRef)
	if err != nil {
		item.Error = fmt.Sprintf("read marketplace inventory: %v", err)
		return item
	}
	store, err := s.storefront.ReadInventory(ctx, m.StorefrontRef)
	if err != nil {
		item.Error = fmt.Sprintf("read storefront inventory: %v", err)
		return item
	}

	item.MarketplaceQuantity = market.Quantity
	item.StorefrontQuantity = store.Sellable()
	item.QuantityDelta = market.Quantity - store.Sellable()

	rate, err := s.rates.CurrentRate(ctx, s.config.BaseCurrency, s.config.TargetCurrency)
	if err != nil {
		item.Error = fmt.Sprintf("resolve exchange rate: %v", err)
		return item
	}
	srcPrice, err := s.marketplace.ReadPrice(ctx, m.MarketplaceRef)
	if err != nil {
		item.Error = fmt.Sprintf("read marketplace price: %v", err)
		return item
	}
	expected, err := channel.CalculateTargetPrice(srcPrice, rate, m.PriceMargin)
	if err != nil {
		item.Error = fmt.Sprintf("compute target price: %v", err)
		return item
	}
	current, err := s.storefront.ReadPrice(ctx, m.StorefrontRef)
	if err != nil {
		item.Error = fmt.Sprintf("read storefront price: %v", err)
		return item
	}

	item.ExpectedPrice = expected.StringFixed(2)
	item.StorefrontPrice = current.StringFixed(2)
	if diff := current.Sub(expected); diff.Abs().GreaterThan(s.config.PriceNoiseThreshold) {
		item.PriceDelta = diff.StringFixed(2)
	}
	return item
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func isRateUnavailable(err error) bool {
	return errors.Is(err, channel.ErrExchangeRateUnavailable)
}

func delta(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
