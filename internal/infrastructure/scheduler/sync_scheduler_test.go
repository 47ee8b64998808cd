package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/channel"
)

type fakeTrigger struct {
	calls atomic.Int64
	err   error
}

func (f *fakeTrigger) TriggerFullSync(ctx context.Context) (*channel.SyncJob, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	job := channel.NewSyncJob(channel.SyncJobKindFull)
	_ = job.Start(0)
	_ = job.Complete()
	return job, nil
}

type fakePurger struct {
	calls atomic.Int64
}

func (f *fakePurger) PurgeOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	f.calls.Add(1)
	return 3, nil
}

func TestSyncSchedulerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  SyncSchedulerConfig
		wantErr bool
	}{
		{"defaults are valid", DefaultSyncSchedulerConfig(), false},
		{"zero interval rejected", SyncSchedulerConfig{Interval: 0}, true},
		{"negative retention rejected", SyncSchedulerConfig{Interval: time.Minute, WebhookRetention: -1}, true},
		{"retention without purge interval rejected", SyncSchedulerConfig{Interval: time.Minute, WebhookRetention: time.Hour}, true},
		{"retention disabled is valid", SyncSchedulerConfig{Interval: time.Minute}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSyncScheduler_TriggersOnInterval(t *testing.T) {
	trigger := &fakeTrigger{}
	purger := &fakePurger{}
	s, err := NewSyncScheduler(SyncSchedulerConfig{
		Enabled:          true,
		Interval:         20 * time.Millisecond,
		WebhookRetention: time.Hour,
		PurgeInterval:    20 * time.Millisecond,
	}, trigger, purger, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return trigger.calls.Load() >= 2 && purger.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSyncScheduler_SkipsWhilePassRunning(t *testing.T) {
	trigger := &fakeTrigger{err: channel.ErrSyncInProgress}
	s, err := NewSyncScheduler(SyncSchedulerConfig{
		Enabled:  true,
		Interval: 10 * time.Millisecond,
	}, trigger, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))

	// The busy trigger is polled without errors escalating anywhere
	assert.Eventually(t, func() bool {
		return trigger.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSyncScheduler_DisabledDoesNotTrigger(t *testing.T) {
	trigger := &fakeTrigger{}
	s, err := NewSyncScheduler(SyncSchedulerConfig{
		Enabled:  false,
		Interval: 5 * time.Millisecond,
	}, trigger, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(0), trigger.calls.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSyncScheduler_StartIsIdempotent(t *testing.T) {
	trigger := &fakeTrigger{}
	s, err := NewSyncScheduler(SyncSchedulerConfig{Enabled: true, Interval: time.Hour}, trigger, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
