// Package orchestrator implements BatchEnrichmentOrchestrator (§4.5): given
// leads, a set of operations, and a jobId, execute every (lead x operation)
// cell with maximum parallelism, persist results, and emit progress
// events, returning once every cell has terminated.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lead-gateway/internal/jobs"
	"lead-gateway/internal/leads"
	"lead-gateway/internal/observability"
	"lead-gateway/internal/progress"
	"lead-gateway/internal/provider"
	wf "lead-gateway/internal/workflow"
	"lead-gateway/internal/workflow/taskqueue"
)

const (
	OperationVerifyEmail = "verify-email"
	OperationPhoneLookup = "phone-lookup"

	phoneTaskQueue = taskqueue.PhoneVerify1 // overridden per-provider inside PhoneLookupWorkflow itself
	emailTaskQueue = taskqueue.EmailVerification
)

func phoneLookupParams(lead leads.Lead) provider.LookupParams {
	return provider.LookupParams{
		FullName:       lead.FullName(),
		CompanyWebsite: lead.NormalizedCompanyWebsite(),
		JobTitle:       lead.NormalizedJobTitle(),
	}
}

// publisher is the subset of *progress.Bus the orchestrator drives. Accepted
// as an interface so batch-fanout logic is testable without a live NATS
// connection.
type publisher interface {
	PublishOperationComplete(room string, payload progress.OperationCompletePayload) error
	PublishOperationError(room string, payload progress.OperationErrorPayload) error
	PublishJobComplete(room string, payload progress.JobCompletePayload) error
}

// ledger is the subset of *costledger.Ledger the orchestrator drives.
type ledger interface {
	RecordAttempt(ctx context.Context, jobID string, leadID uuid.UUID, provider string, costDollars float64) error
}

// idempotency is the subset of *IdempotencyCache the orchestrator drives.
type idempotency interface {
	Seen(ctx context.Context, workflowID string) (bool, error)
	MarkSeen(ctx context.Context, workflowID string) error
}

// Orchestrator wires the durable-workflow client, persistence, progress
// bus, cost ledger, and idempotency cache together to drive one batch.
type Orchestrator struct {
	Temporal      client.Client
	Leads         leads.Store
	Tracker       *jobs.Tracker
	Bus           publisher
	Ledger        ledger
	Idempotency   idempotency
	ProviderNames []string // priority order, from provider.Registry.Ordered()
	Logger        *zap.Logger
	Metrics       *observability.Metrics // may be nil
}

// BatchInput is what §4.5 calls { leads, operations, jobId }; the caller
// resolves leads to their ids ahead of time.
type BatchInput struct {
	JobID      string
	LeadIDs    []uuid.UUID
	Operations []string
}

// Run executes every (lead x operation) cell in parallel via a bare
// errgroup.Group — deliberately not errgroup.WithContext, since one cell's
// failure must never cancel its siblings (§4.5, §7.5).
func (o *Orchestrator) Run(ctx context.Context, input BatchInput) error {
	records, err := o.Leads.FindManyByIDs(ctx, input.LeadIDs)
	if err != nil {
		return fmt.Errorf("orchestrator: load leads: %w", err)
	}

	total := len(records) * len(input.Operations)
	var completed int64

	var g errgroup.Group
	for _, lead := range records {
		lead := lead
		for _, op := range input.Operations {
			op := op
			g.Go(func() error {
				n := atomic.AddInt64(&completed, 1)
				return o.runCell(ctx, input.JobID, lead, op, int(n), total)
			})
		}
	}

	if err := g.Wait(); err != nil {
		o.Logger.Warn("batch completed with at least one cell error", zap.String("job_id", input.JobID), zap.Error(err))
	}

	job, _ := o.Tracker.GetJob(input.JobID)
	if err := o.Bus.PublishJobComplete(input.JobID, progress.JobCompletePayload{
		JobID:          input.JobID,
		Type:           string(jobs.TypeEnrichment),
		TotalProcessed: job.ProcessedLeads,
	}); err != nil {
		o.Logger.Warn("failed to publish job-complete", zap.String("job_id", input.JobID), zap.Error(err))
	}
	return nil
}

func (o *Orchestrator) runCell(ctx context.Context, jobID string, lead leads.Lead, operation string, progressIndex, total int) error {
	defer o.Tracker.IncrementProgress(jobID)

	var err error
	switch operation {
	case OperationVerifyEmail:
		err = o.runVerifyEmailCell(ctx, jobID, lead, progressIndex, total)
	case OperationPhoneLookup:
		err = o.runPhoneLookupCell(ctx, jobID, lead, progressIndex, total)
	default:
		err = fmt.Errorf("orchestrator: unknown operation %q", operation)
	}

	if o.Metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		o.Metrics.CellsProcessedTotal.WithLabelValues(operation, result).Inc()
	}
	return err
}

func (o *Orchestrator) runVerifyEmailCell(ctx context.Context, jobID string, lead leads.Lead, progressIndex, total int) error {
	leadID := lead.ID.String()

	if lead.EmailVerified.Known() {
		return o.publishComplete(jobID, leadID, OperationVerifyEmail, map[string]any{"emailVerified": lead.EmailVerified.Bool()}, progressIndex, total)
	}

	workflowID := WorkflowID(OperationVerifyEmail, leadID, jobID)
	if seen, err := o.Idempotency.Seen(ctx, workflowID); err == nil && seen {
		return nil
	}

	run, err := o.Temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: emailTaskQueue,
	}, wf.VerifyEmailWorkflowName, wf.VerifyEmailInput{Email: lead.Email})
	if err != nil {
		o.publishError(jobID, leadID, OperationVerifyEmail, err)
		return err
	}
	_ = o.Idempotency.MarkSeen(ctx, workflowID)

	var verified bool
	if err := run.Get(ctx, &verified); err != nil {
		o.publishError(jobID, leadID, OperationVerifyEmail, err)
		return err
	}

	value := leads.EmailVerifiedFalse
	if verified {
		value = leads.EmailVerifiedTrue
	}
	if err := o.Leads.UpdateFields(ctx, lead.ID, leads.FieldUpdate{EmailVerified: &value}); err != nil {
		o.publishError(jobID, leadID, OperationVerifyEmail, err)
		return err
	}

	return o.publishComplete(jobID, leadID, OperationVerifyEmail, map[string]any{"emailVerified": verified}, progressIndex, total)
}

func (o *Orchestrator) runPhoneLookupCell(ctx context.Context, jobID string, lead leads.Lead, progressIndex, total int) error {
	leadID := lead.ID.String()

	if lead.PhoneNumber != nil && *lead.PhoneNumber != "" {
		return o.publishComplete(jobID, leadID, OperationPhoneLookup, map[string]any{
			"phone": *lead.PhoneNumber, "provider": "Existing", "cost": 0,
		}, progressIndex, total)
	}

	workflowID := WorkflowID(OperationPhoneLookup, leadID, jobID)
	if seen, err := o.Idempotency.Seen(ctx, workflowID); err == nil && seen {
		return nil
	}

	input := wf.PhoneLookupInput{
		Params: phoneLookupParams(lead),
		ProviderNames: o.ProviderNames,
	}

	run, err := o.Temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: phoneTaskQueue,
	}, wf.PhoneLookupWorkflowName, input)
	if err != nil {
		o.publishError(jobID, leadID, OperationPhoneLookup, err)
		return err
	}
	_ = o.Idempotency.MarkSeen(ctx, workflowID)

	var outcome wf.PhoneLookupResult
	if err := run.Get(ctx, &outcome); err != nil {
		o.publishError(jobID, leadID, OperationPhoneLookup, err)
		return err
	}

	// Every attempt that ran is billable per §4.2, whether or not it found a
	// phone — not just the one whose PhoneResult is the workflow's decision.
	for _, attempt := range outcome.Attempts {
		if attempt.Cost > 0 {
			_ = o.Ledger.RecordAttempt(ctx, jobID, lead.ID, attempt.Provider, attempt.Cost)
		}
	}

	result := outcome.Result
	if result.Phone == "" {
		return o.publishComplete(jobID, leadID, OperationPhoneLookup, map[string]any{
			"phone": "", "provider": result.Provider, "cost": result.Cost,
		}, progressIndex, total)
	}

	if err := o.Leads.UpdateFields(ctx, lead.ID, leads.FieldUpdate{PhoneNumber: &result.Phone}); err != nil {
		o.publishError(jobID, leadID, OperationPhoneLookup, err)
		return err
	}

	return o.publishComplete(jobID, leadID, OperationPhoneLookup, map[string]any{
		"phone": result.Phone, "provider": result.Provider, "cost": result.Cost,
	}, progressIndex, total)
}

func (o *Orchestrator) publishComplete(jobID, leadID, operation string, data map[string]any, completed, total int) error {
	return o.Bus.PublishOperationComplete(jobID, progress.OperationCompletePayload{
		LeadID:    leadID,
		Operation: operation,
		Data:      data,
		Progress:  progress.ProgressCount{Completed: completed, Total: total},
	})
}

func (o *Orchestrator) publishError(jobID, leadID, operation string, err error) {
	if pubErr := o.Bus.PublishOperationError(jobID, progress.OperationErrorPayload{
		LeadID:    leadID,
		Operation: operation,
		Error:     err.Error(),
	}); pubErr != nil {
		o.Logger.Warn("failed to publish operation-error", zap.String("job_id", jobID), zap.Error(pubErr))
	}
}
