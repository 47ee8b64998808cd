package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request counts and latency for the HTTP server.
type HTTPMetrics struct {
	requestTotal    *Counter
	requestDuration *Histogram
}

// NewHTTPMetrics creates HTTP server metrics on the given meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestTotal, err := NewCounter(
		meter,
		"http_request_total",
		"Total number of HTTP requests by method, route and status",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "http_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}, nil
}

// RecordRequest records one completed HTTP request.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	m.requestTotal.Inc(ctx,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.String(strconv.Itoa(status)),
	)
	m.requestDuration.RecordDuration(ctx, duration,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
	)
}
