package channel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncJob Aggregate
// ---------------------------------------------------------------------------

// SyncJobKind classifies what triggered a reconciliation job.
type SyncJobKind string

const (
	// SyncJobKindFull is a scheduled or requested pass over all active mappings
	SyncJobKindFull SyncJobKind = "FULL"
	// SyncJobKindPartial is a pass over a requested subset of SKUs
	SyncJobKindPartial SyncJobKind = "PARTIAL"
	// SyncJobKindManual is an operator-triggered single-SKU sync
	SyncJobKindManual SyncJobKind = "MANUAL"
	// SyncJobKindWebhook is a reconciliation derived from a platform webhook
	SyncJobKindWebhook SyncJobKind = "WEBHOOK"
)

// IsValid returns true if the kind is valid.
func (k SyncJobKind) IsValid() bool {
	switch k {
	case SyncJobKindFull, SyncJobKindPartial, SyncJobKindManual, SyncJobKindWebhook:
		return true
	default:
		return false
	}
}

// SyncJobStatus is the lifecycle state of a job. Transitions move forward
// only: PENDING -> RUNNING -> {COMPLETED, FAILED}. Terminal states are
// immutable; a retry is a new job.
type SyncJobStatus string

const (
	SyncJobStatusPending   SyncJobStatus = "PENDING"
	SyncJobStatusRunning   SyncJobStatus = "RUNNING"
	SyncJobStatusCompleted SyncJobStatus = "COMPLETED"
	SyncJobStatusFailed    SyncJobStatus = "FAILED"
)

// IsTerminal returns true for COMPLETED and FAILED.
func (s SyncJobStatus) IsTerminal() bool {
	return s == SyncJobStatusCompleted || s == SyncJobStatusFailed
}

// String returns the string representation of SyncJobStatus.
func (s SyncJobStatus) String() string {
	return string(s)
}

// SyncItemError records a single per-item failure inside a job. The persisted
// shape {sku, error, timestamp} is fixed for report consumers.
type SyncItemError struct {
	SKU       string    `json:"sku"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncJob is the durable record of one reconciliation attempt. Item failures
// accumulate in the per-item error list and never flip the job to FAILED;
// FAILED is reserved for the engine being unable to complete its own
// bookkeeping. Partial success is a first-class COMPLETED outcome.
type SyncJob struct {
	// ID is the job identifier (jobId for report consumers)
	ID uuid.UUID
	// Kind is what triggered this job
	Kind SyncJobKind
	// Status is the forward-only lifecycle state
	Status SyncJobStatus
	// TotalCount is the number of items the job set out to reconcile
	TotalCount int
	// SuccessCount is the number of successfully reconciled items
	SuccessCount int
	// FailedCount is the number of items that failed
	FailedCount int
	// SkippedCount is the number of items skipped (timeout, missing rate)
	SkippedCount int
	// ItemErrors lists per-item failures
	ItemErrors []SyncItemError
	// Error holds a pass-level error when the job itself FAILED
	Error string
	// StartedAt is when the job entered RUNNING
	StartedAt *time.Time
	// CompletedAt is when the job reached a terminal state
	CompletedAt *time.Time
	// CreatedAt is when the job document was created
	CreatedAt time.Time
}

// NewSyncJob creates a PENDING job.
func NewSyncJob(kind SyncJobKind) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Kind:       kind,
		Status:     SyncJobStatusPending,
		ItemErrors: make([]SyncItemError, 0),
		CreatedAt:  time.Now(),
	}
}

// Start transitions the job to RUNNING.
func (j *SyncJob) Start(totalCount int) error {
	if j.Status != SyncJobStatusPending {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.TotalCount = totalCount
	j.StartedAt = &now
	return nil
}

// Complete transitions the job to COMPLETED. Item failures do not prevent
// completion.
func (j *SyncJob) Complete() error {
	if j.Status != SyncJobStatusRunning {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = SyncJobStatusCompleted
	j.CompletedAt = &now
	return nil
}

// Fail transitions the job to FAILED with a pass-level error. Used only when
// the engine cannot guarantee its own bookkeeping, never merely because some
// items failed.
func (j *SyncJob) Fail(errMsg string) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.Error = errMsg
	j.CompletedAt = &now
	return nil
}

// RecordItemSuccess counts one reconciled item.
func (j *SyncJob) RecordItemSuccess() {
	j.SuccessCount++
}

// RecordItemFailure counts one failed item and appends its error entry.
func (j *SyncJob) RecordItemFailure(sku string, err error) {
	j.FailedCount++
	j.ItemErrors = append(j.ItemErrors, SyncItemError{
		SKU:       sku,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

// RecordItemSkip counts one skipped item.
func (j *SyncJob) RecordItemSkip() {
	j.SkippedCount++
}

// ---------------------------------------------------------------------------
// SyncJobRepository
// ---------------------------------------------------------------------------

// SyncJobRepository persists the job ledger.
type SyncJobRepository interface {
	// Save creates or updates a job document
	Save(ctx context.Context, job *SyncJob) error

	// FindByID finds a job by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncJob, error)

	// FindRecent returns the most recent jobs, newest first
	FindRecent(ctx context.Context, limit int) ([]SyncJob, error)

	// FindRunning returns the currently RUNNING job, if any
	FindRunning(ctx context.Context) (*SyncJob, error)
}
