// Package leads implements the lead persistence store contract from §6:
// findById, findManyByIds, updateFields — no transactions required.
// Adapted from the teacher's messages.Store (database/sql + lib/pq).
package leads

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lead-gateway/internal/persistence"
)

// Store is the persistence boundary BatchEnrichmentOrchestrator reads leads
// from and writes results back to.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (Lead, error)
	FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error)
	UpdateFields(ctx context.Context, id uuid.UUID, update FieldUpdate) error
}

// PostgresStore is the production Store implementation.
type PostgresStore struct {
	db     *persistence.PostgresDB
	logger *zap.Logger
}

func NewPostgresStore(db *persistence.PostgresDB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

const leadColumns = `id, first_name, last_name, email, company_website, job_title, phone_number, email_verified, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.CompanyWebsite, &l.JobTitle, &l.PhoneNumber, &l.EmailVerified, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return Lead{}, fmt.Errorf("leads: lead %s not found", id)
	}
	if err != nil {
		return Lead{}, fmt.Errorf("leads: find by id: %w", err)
	}
	return lead, nil
}

func (s *PostgresStore) FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: find many by ids: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan lead: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateFields(ctx context.Context, id uuid.UUID, update FieldUpdate) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	if update.PhoneNumber != nil {
		args = append(args, *update.PhoneNumber)
		sets = append(sets, fmt.Sprintf("phone_number = $%d", len(args)))
	}
	if update.EmailVerified != nil {
		args = append(args, *update.EmailVerified)
		sets = append(sets, fmt.Sprintf("email_verified = $%d", len(args)))
	}
	if len(sets) == 1 {
		return nil
	}

	query := `UPDATE leads SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("leads: update fields: %w", err)
	}

	s.logger.Info("lead updated", zap.String("lead_id", id.String()))
	return nil
}
