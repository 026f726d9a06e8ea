// Package jobs implements JobTracker (§4.6): per-process job records keyed
// by an opaque id, adapted from the teacher's atomic-counter
// PerformanceMonitor into a map of per-job progress state guarded by one
// mutex.
package jobs

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lead-gateway/internal/observability"
)

// Type distinguishes the job kinds the tracker records.
type Type string

const (
	TypeEnrichment Type = "enrichment"
)

// Job is a snapshot of one tracked job's progress.
type Job struct {
	ID             string
	Type           Type
	Operations     []string
	TotalLeads     int
	ProcessedLeads int
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// IsComplete reports whether every unit of work has been accounted for.
func (j Job) IsComplete() bool {
	return j.CompletedAt != nil
}

type record struct {
	job       Job
	mu        chan struct{} // unused: every record is guarded by the Tracker's own lock
	cleanupAt *time.Timer
}

// Tracker maintains job records for the lifetime of the process. All reads
// and mutations are serialized by one tracker-wide lock; progress ordering
// across concurrent incrementProgress calls is not guaranteed, only the
// final count is.
type Tracker struct {
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      chan struct{}
	records map[string]*record

	cleanupDelay time.Duration
}

// NewTracker constructs an empty tracker. cleanupDelay controls how long a
// completed job's record survives after completion (§4.6 cleanup), giving
// late subscribers a window to observe the final state. metrics may be nil.
func NewTracker(logger *zap.Logger, cleanupDelay time.Duration, metrics *observability.Metrics) *Tracker {
	t := &Tracker{
		logger:       logger,
		metrics:      metrics,
		mu:           make(chan struct{}, 1),
		records:      make(map[string]*record),
		cleanupDelay: cleanupDelay,
	}
	t.mu <- struct{}{}
	return t
}

func (t *Tracker) lock()   { <-t.mu }
func (t *Tracker) unlock() { t.mu <- struct{}{} }

// CreateJob starts a new job record with a unique id.
func (t *Tracker) CreateJob(jobType Type, totalLeads int) string {
	id := uuid.NewString()

	t.lock()
	t.records[id] = &record{job: Job{
		ID:         id,
		Type:       jobType,
		TotalLeads: totalLeads,
		StartedAt:  time.Now(),
	}}
	t.unlock()

	if t.metrics != nil {
		t.metrics.JobsCreatedTotal.Inc()
	}
	return id
}

// CreateEnrichmentJob starts a new enrichment job record, recording which
// operations it covers.
func (t *Tracker) CreateEnrichmentJob(totalLeads int, operations []string) string {
	id := uuid.NewString()

	t.lock()
	t.records[id] = &record{job: Job{
		ID:         id,
		Type:       TypeEnrichment,
		Operations: operations,
		TotalLeads: totalLeads,
		StartedAt:  time.Now(),
	}}
	t.unlock()

	if t.metrics != nil {
		t.metrics.JobsCreatedTotal.Inc()
	}
	return id
}

// IncrementProgress records one completed work unit. When the count
// reaches totalLeads, completedAt is stamped exactly once.
func (t *Tracker) IncrementProgress(jobID string) {
	t.lock()
	defer t.unlock()

	rec, ok := t.records[jobID]
	if !ok {
		return
	}

	rec.job.ProcessedLeads++
	if rec.job.ProcessedLeads >= rec.job.TotalLeads && rec.job.CompletedAt == nil {
		now := time.Now()
		rec.job.CompletedAt = &now
		t.logger.Info("job completed",
			zap.String("job_id", jobID),
			zap.Duration("duration", now.Sub(rec.job.StartedAt)),
			zap.Int("total_leads", rec.job.TotalLeads),
		)
		if t.metrics != nil {
			t.metrics.JobsCompletedTotal.Inc()
		}
		t.scheduleCleanupLocked(jobID)
	}
}

// GetJob returns a snapshot of the job's current state, or false if absent.
func (t *Tracker) GetJob(jobID string) (Job, bool) {
	t.lock()
	defer t.unlock()

	rec, ok := t.records[jobID]
	if !ok {
		return Job{}, false
	}
	return rec.job, true
}

// IsComplete is a convenience predicate over GetJob.
func (t *Tracker) IsComplete(jobID string) bool {
	job, ok := t.GetJob(jobID)
	return ok && job.IsComplete()
}

// scheduleCleanupLocked arranges for the job's record to be removed after
// cleanupDelay. Caller must hold t.mu.
func (t *Tracker) scheduleCleanupLocked(jobID string) {
	rec := t.records[jobID]
	rec.cleanupAt = time.AfterFunc(t.cleanupDelay, func() {
		t.lock()
		delete(t.records, jobID)
		t.unlock()
	})
}

// Cleanup removes a job's record immediately, bypassing the scheduled
// delay. Exposed for tests and for explicit operator cleanup.
func (t *Tracker) Cleanup(jobID string) {
	t.lock()
	defer t.unlock()
	if rec, ok := t.records[jobID]; ok {
		if rec.cleanupAt != nil {
			rec.cleanupAt.Stop()
		}
		delete(t.records, jobID)
	}
}
