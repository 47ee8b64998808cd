package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	appchannel "github.com/channelsync/backend/internal/application/channel"
)

// SyncMetrics provides counters for the reconciliation engine. It implements
// the application layer's Metrics interface.
type SyncMetrics struct {
	logger *zap.Logger

	passTotal        *Counter
	writeTotal       *Counter
	itemFailureTotal *Counter
}

// NewSyncMetrics creates sync engine metrics on the given meter.
func NewSyncMetrics(meter metric.Meter, logger *zap.Logger) (*SyncMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{logger: logger}

	var err error
	sm.passTotal, err = NewCounter(
		meter,
		"channelsync_pass_total",
		"Total number of completed reconciliation passes",
		"{passes}",
	)
	if err != nil {
		return nil, err
	}

	sm.writeTotal, err = NewCounter(
		meter,
		"channelsync_write_total",
		"Total number of corrective writes by platform and dimension",
		"{writes}",
	)
	if err != nil {
		return nil, err
	}

	sm.itemFailureTotal, err = NewCounter(
		meter,
		"channelsync_item_failure_total",
		"Total number of per-item reconciliation failures by platform",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordPass counts one completed pass of the given kind.
func (m *SyncMetrics) RecordPass(ctx context.Context, kind string) {
	m.passTotal.Inc(ctx, AttrPassKind.String(kind))
}

// RecordWrite counts one corrective write.
func (m *SyncMetrics) RecordWrite(ctx context.Context, platform, dimension string) {
	m.writeTotal.Inc(ctx, AttrPlatform.String(platform), AttrDimension.String(dimension))
}

// RecordItemFailure counts one failed item.
func (m *SyncMetrics) RecordItemFailure(ctx context.Context, platform string) {
	m.itemFailureTotal.Inc(ctx, AttrPlatform.String(platform))
}

// Ensure SyncMetrics implements the engine's Metrics interface
var _ appchannel.Metrics = (*SyncMetrics)(nil)
