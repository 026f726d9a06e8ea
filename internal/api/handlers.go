// Package api is the ambient HTTP ingress layer (ambient per SPEC_FULL's
// supplemented-features section, not part of the core module set) — fiber
// routes/handlers adapted from the teacher's internal/api.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lead-gateway/internal/costledger"
	"lead-gateway/internal/jobs"
	"lead-gateway/internal/orchestrator"
)

type Handlers struct {
	Tracker      *jobs.Tracker
	Ledger       *costledger.Ledger
	Orchestrator *orchestrator.Orchestrator
}

func NewHandlers(tracker *jobs.Tracker, ledger *costledger.Ledger, orch *orchestrator.Orchestrator) *Handlers {
	return &Handlers{Tracker: tracker, Ledger: ledger, Orchestrator: orch}
}

func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "timestamp": time.Now().Unix()})
}

func (h *Handlers) ReadyCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ready", "timestamp": time.Now().Unix()})
}

// CreateEnrichmentJobRequest is the POST /v1/jobs body.
type CreateEnrichmentJobRequest struct {
	LeadIDs    []uuid.UUID `json:"leadIds"`
	Operations []string    `json:"operations"`
}

// CreateEnrichmentJobResponse acknowledges job creation; the batch runs in
// the background and progress is observed via the ProgressBus room named
// after jobId.
type CreateEnrichmentJobResponse struct {
	JobID string `json:"jobId"`
}

// CreateEnrichmentJob handles POST /v1/jobs
//
//	@Summary		Start an enrichment job
//	@Description	Runs phone-lookup and/or email-verification for a set of leads
//	@Tags			Jobs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateEnrichmentJobRequest		true	"leads and operations"
//	@Success		202		{object}	CreateEnrichmentJobResponse	"job accepted"
//	@Failure		400		{object}	map[string]string				"bad request"
//	@Router			/v1/jobs [post]
func (h *Handlers) CreateEnrichmentJob(c *fiber.Ctx) error {
	var req CreateEnrichmentJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.LeadIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "leadIds is required"})
	}
	if len(req.Operations) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "operations is required"})
	}

	jobID := h.Tracker.CreateEnrichmentJob(len(req.LeadIDs)*len(req.Operations), req.Operations)

	go func() {
		// The handler returns as soon as this goroutine is launched, and
		// fasthttp recycles c.Context() into its connection pool the moment
		// it does — a detached goroutine must never hold onto it.
		ctx := context.Background()
		if err := h.Orchestrator.Run(ctx, orchestrator.BatchInput{
			JobID:      jobID,
			LeadIDs:    req.LeadIDs,
			Operations: req.Operations,
		}); err != nil {
			// Run already emits per-cell error events; a non-nil error here
			// would only ever be the lead-loading failure, which has no
			// per-cell room to report into.
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(CreateEnrichmentJobResponse{JobID: jobID})
}

// JobStatusResponse is the GET /v1/jobs/:id response.
type JobStatusResponse struct {
	JobID          string `json:"jobId"`
	Type           string `json:"type"`
	TotalLeads     int    `json:"totalLeads"`
	ProcessedLeads int    `json:"processedLeads"`
	Complete       bool   `json:"complete"`
}

// GetJobStatus handles GET /v1/jobs/:id
//
//	@Summary	Get enrichment job progress
//	@Tags		Jobs
//	@Produce	json
//	@Param		id	path		string				true	"job id"
//	@Success	200	{object}	JobStatusResponse
//	@Failure	404	{object}	map[string]string	"job not found"
//	@Router		/v1/jobs/{id} [get]
func (h *Handlers) GetJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	job, ok := h.Tracker.GetJob(jobID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(JobStatusResponse{
		JobID:          job.ID,
		Type:           string(job.Type),
		TotalLeads:     job.TotalLeads,
		ProcessedLeads: job.ProcessedLeads,
		Complete:       job.IsComplete(),
	})
}

// GetJobCost handles GET /v1/jobs/:id/cost
//
//	@Summary	Get an enrichment job's provider cost breakdown
//	@Tags		Jobs
//	@Produce	json
//	@Param		id	path		string	true	"job id"
//	@Success	200	{object}	costledger.Report
//	@Router		/v1/jobs/{id}/cost [get]
func (h *Handlers) GetJobCost(c *fiber.Ctx) error {
	jobID := c.Params("id")
	report, err := h.Ledger.GetJobCost(c.Context(), jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load job cost"})
	}
	return c.JSON(report)
}
