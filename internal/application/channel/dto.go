package channel

import (
	"time"

	"github.com/channelsync/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Job Reporting DTOs
// ---------------------------------------------------------------------------

// JobSummary is the externally visible shape of one sync job. The field set
// {jobId, type, status, totals, errors, timestamps} is fixed; report
// consumers rely on it.
type JobSummary struct {
	JobID        string                  `json:"jobId"`
	Type         string                  `json:"type"`
	Status       string                  `json:"status"`
	TotalCount   int                     `json:"totalCount"`
	SuccessCount int                     `json:"successCount"`
	FailedCount  int                     `json:"failedCount"`
	SkippedCount int                     `json:"skippedCount"`
	Errors       []channel.SyncItemError `json:"errors"`
	Error        string                  `json:"error,omitempty"`
	StartedAt    *time.Time              `json:"startedAt,omitempty"`
	CompletedAt  *time.Time              `json:"completedAt,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// ToJobSummary converts a job for transport-layer consumers.
func ToJobSummary(job *channel.SyncJob) JobSummary {
	return JobSummary{
		JobID:        job.ID.String(),
		Type:         string(job.Kind),
		Status:       job.Status.String(),
		TotalCount:   job.TotalCount,
		SuccessCount: job.SuccessCount,
		FailedCount:  job.FailedCount,
		SkippedCount: job.SkippedCount,
		Errors:       job.ItemErrors,
		Error:        job.Error,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		CreatedAt:    job.CreatedAt,
	}
}

// StatusReport describes the engine state for operators.
type StatusReport struct {
	SyncRunning bool         `json:"syncRunning"`
	CurrentJob  *JobSummary  `json:"currentJob,omitempty"`
	RecentJobs  []JobSummary `json:"recentJobs"`
}

// ---------------------------------------------------------------------------
// Discrepancy Report DTOs
// ---------------------------------------------------------------------------

// DiscrepancyItem is one SKU whose platform state diverges, or whose state
// could not be read.
type DiscrepancyItem struct {
	SKU                 string `json:"sku"`
	MarketplaceQuantity int64  `json:"marketplaceQuantity"`
	StorefrontQuantity  int64  `json:"storefrontQuantity"`
	QuantityDelta       int64  `json:"quantityDelta"`
	ExpectedPrice       string `json:"expectedPrice,omitempty"`
	StorefrontPrice     string `json:"storefrontPrice,omitempty"`
	PriceDelta          string `json:"priceDelta,omitempty"`
	Error               string `json:"error,omitempty"`
}

// DiscrepancyReport is the read-only comparison of all active mappings.
type DiscrepancyReport struct {
	TotalChecked int               `json:"totalChecked"`
	Items        []DiscrepancyItem `json:"items"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}
