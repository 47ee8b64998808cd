package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncTrigger starts a full reconciliation pass. A trigger that loses the
// global run slot reports ErrSyncInProgress and creates no job.
type SyncTrigger interface {
	TriggerFullSync(ctx context.Context) (*channel.SyncJob, error)
}

// EventPurger removes webhook log entries older than the retention window.
type EventPurger interface {
	PurgeOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// SyncSchedulerConfig holds configuration for the periodic sync scheduler.
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler runs at all
	Enabled bool
	// Interval is the delay between full pass triggers
	Interval time.Duration
	// WebhookRetention is how long webhook log entries are kept; zero
	// disables the purge loop
	WebhookRetention time.Duration
	// PurgeInterval is the delay between webhook log purges
	PurgeInterval time.Duration
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:          true,
		Interval:         15 * time.Minute,
		WebhookRetention: 30 * 24 * time.Hour,
		PurgeInterval:    24 * time.Hour,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.WebhookRetention < 0 {
		return ErrInvalidConfig
	}
	if c.WebhookRetention > 0 && c.PurgeInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler triggers full reconciliation passes on a fixed interval and
// periodically purges the webhook log. A pass skipped because another pass
// still holds the run slot is a normal outcome, not an error.
type SyncScheduler struct {
	config  SyncSchedulerConfig
	trigger SyncTrigger
	purger  EventPurger
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler. The purger may be nil when
// retention is disabled.
func NewSyncScheduler(config SyncSchedulerConfig, trigger SyncTrigger, purger EventPurger, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config:  config,
		trigger: trigger,
		purger:  purger,
		logger:  logger,
	}, nil
}

// Start starts the scheduler loops.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info("Sync scheduler disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.syncLoop(ctx)

	if s.purger != nil && s.config.WebhookRetention > 0 {
		s.wg.Add(1)
		go s.purgeLoop(ctx)
	}

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("webhook_retention", s.config.WebhookRetention),
	)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// syncLoop triggers a full pass every interval.
func (s *SyncScheduler) syncLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce triggers one full pass.
func (s *SyncScheduler) runOnce(ctx context.Context) {
	job, err := s.trigger.TriggerFullSync(ctx)
	if err != nil {
		if errors.Is(err, channel.ErrSyncInProgress) {
			s.logger.Debug("Skipping scheduled pass, previous pass still running")
			return
		}
		s.logger.Error("Scheduled pass failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled pass completed",
		zap.String("job_id", job.ID.String()),
		zap.String("status", job.Status.String()),
		zap.Int("total_count", job.TotalCount),
		zap.Int("success_count", job.SuccessCount),
		zap.Int("failed_count", job.FailedCount),
		zap.Int("skipped_count", job.SkippedCount),
	)
}

// purgeLoop removes webhook log entries past retention.
func (s *SyncScheduler) purgeLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.purger.PurgeOldEvents(ctx, s.config.WebhookRetention)
			if err != nil {
				s.logger.Error("Webhook log purge failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				s.logger.Info("Webhook log purged", zap.Int64("deleted", deleted))
			}
		}
	}
}
