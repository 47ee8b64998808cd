package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appchannel "github.com/channelsync/backend/internal/application/channel"
	"github.com/channelsync/backend/internal/domain/channel"
)

// SyncService is the engine surface the sync endpoints need.
type SyncService interface {
	TriggerFullSync(ctx context.Context) (*channel.SyncJob, error)
	TriggerManualSync(ctx context.Context, skus []string) (*channel.SyncJob, error)
	SyncOne(ctx context.Context, sku string) (*channel.SyncJob, error)
	GetStatus(ctx context.Context) (*appchannel.StatusReport, error)
	GetDiscrepancyReport(ctx context.Context) (*appchannel.DiscrepancyReport, error)
}

// SyncHandler handles sync trigger and reporting endpoints
type SyncHandler struct {
	BaseHandler
	engine SyncService
	jobs   channel.SyncJobRepository
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(engine SyncService, jobs channel.SyncJobRepository) *SyncHandler {
	return &SyncHandler{
		engine: engine,
		jobs:   jobs,
	}
}

// ManualSyncRequest selects the SKUs for a manual pass
type ManualSyncRequest struct {
	SKUs []string `json:"skus" binding:"required,min=1"`
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/full", h.TriggerFullSync)
		sync.POST("/manual", h.TriggerManualSync)
		sync.POST("/skus/:sku", h.SyncOne)
		sync.GET("/status", h.GetStatus)
		sync.GET("/report", h.GetReport)
		sync.GET("/jobs", h.ListJobs)
		sync.GET("/jobs/:id", h.GetJob)
	}
}

// TriggerFullSync starts a full reconciliation pass over all active mappings.
// Exactly one pass may run at a time; a concurrent trigger gets 409.
func (h *SyncHandler) TriggerFullSync(c *gin.Context) {
	job, err := h.engine.TriggerFullSync(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appchannel.ToJobSummary(job))
}

// TriggerManualSync starts a pass over the selected SKUs.
func (h *SyncHandler) TriggerManualSync(c *gin.Context) {
	var req ManualSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "skus must be a non-empty list")
		return
	}

	job, err := h.engine.TriggerManualSync(c.Request.Context(), req.SKUs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appchannel.ToJobSummary(job))
}

// SyncOne reconciles a single SKU.
func (h *SyncHandler) SyncOne(c *gin.Context) {
	sku := c.Param("sku")

	job, err := h.engine.SyncOne(c.Request.Context(), sku)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appchannel.ToJobSummary(job))
}

// GetStatus reports whether a pass is running and the recent job history.
func (h *SyncHandler) GetStatus(c *gin.Context) {
	status, err := h.engine.GetStatus(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, status)
}

// GetReport produces the read-only discrepancy report. It writes nothing.
func (h *SyncHandler) GetReport(c *gin.Context) {
	report, err := h.engine.GetDiscrepancyReport(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// ListJobsRequest bounds the job history listing
type ListJobsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ListJobs lists recent sync jobs, newest first.
func (h *SyncHandler) ListJobs(c *gin.Context) {
	var req ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid limit")
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	jobs, err := h.jobs.FindRecent(c.Request.Context(), req.Limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	summaries := make([]appchannel.JobSummary, 0, len(jobs))
	for i := range jobs {
		summaries = append(summaries, appchannel.ToJobSummary(&jobs[i]))
	}
	h.Success(c, summaries)
}

// GetJob returns one sync job by ID.
func (h *SyncHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid job id")
		return
	}

	job, err := h.jobs.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, appchannel.ToJobSummary(job))
}
