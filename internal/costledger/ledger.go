// Package costledger records per-attempt provider costs. Unlike the
// teacher's credit-hold/capture/release billing model, this domain has no
// pre-paid client balance to debit against — §4.2's "cost is charged per
// attempt that ran" invariant is instead modeled as an append-only ledger,
// with per-job aggregation as the supplemental reporting feature SPEC_FULL
// adds on top of it.
package costledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lead-gateway/internal/persistence"
)

// Entry is one recorded provider attempt's charge.
type Entry struct {
	ID         uuid.UUID
	JobID      string
	LeadID     uuid.UUID
	Provider   string
	CostCents  int64
	RecordedAt string
}

// Report aggregates a job's charges for GetJobCost.
type Report struct {
	JobID              string
	TotalCostCents     int64
	PerProviderBreakdown map[string]int64
}

// Ledger is the append-only store of provider attempt costs.
type Ledger struct {
	db     *persistence.PostgresDB
	logger *zap.Logger
}

func NewLedger(db *persistence.PostgresDB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// CentsFromDollars converts a provider's costPerRequest (e.g. 0.02) into
// the integer cents the ledger stores, matching the teacher's amount_cents
// idiom rather than carrying floats through persistence.
func CentsFromDollars(dollars float64) int64 {
	return int64(dollars*100 + 0.5)
}

// RecordAttempt appends one charge. Every completed provider attempt
// charges exactly once, whether or not it found a phone.
func (l *Ledger) RecordAttempt(ctx context.Context, jobID string, leadID uuid.UUID, provider string, costDollars float64) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO cost_ledger (id, job_id, lead_id, provider, cost_cents, recorded_at) VALUES ($1, $2, $3, $4, $5, now())`,
		uuid.New(), jobID, leadID, provider, CentsFromDollars(costDollars))
	if err != nil {
		return fmt.Errorf("costledger: record attempt: %w", err)
	}
	l.logger.Debug("cost recorded", zap.String("job_id", jobID), zap.String("provider", provider))
	return nil
}

// GetJobCost aggregates total and per-provider spend for a job.
func (l *Ledger) GetJobCost(ctx context.Context, jobID string) (Report, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT provider, SUM(cost_cents) FROM cost_ledger WHERE job_id = $1 GROUP BY provider`, jobID)
	if err != nil {
		return Report{}, fmt.Errorf("costledger: get job cost: %w", err)
	}
	defer rows.Close()

	report := Report{JobID: jobID, PerProviderBreakdown: make(map[string]int64)}
	for rows.Next() {
		var provider string
		var cents int64
		if err := rows.Scan(&provider, &cents); err != nil {
			return Report{}, fmt.Errorf("costledger: scan: %w", err)
		}
		report.PerProviderBreakdown[provider] = cents
		report.TotalCostCents += cents
	}
	return report, rows.Err()
}
