package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thavon_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead pipeline statuses.
const (
	StatusNew            = "new"
	StatusCallingInbound = "calling_inbound"
	StatusCalled         = "called"
	StatusNoAnswer       = "no_answer"
	StatusBusy           = "busy"
)

// Lead is a prospect tied to one agency.
type Lead struct {
	ID        uuid.UUID
	AgencyID  uuid.UUID
	Name      string
	Phone     string
	Address   string
	Source    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new leads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lead and returns it with generated fields populated.
func (r *Repository) Create(ctx context.Context, lead *Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	query := `
		INSERT INTO leads (id, agency_id, name, phone, address, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	_, err := r.pool.Exec(ctx, query,
		lead.ID, lead.AgencyID, lead.Name, lead.Phone, lead.Address, lead.Source, lead.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// GetByID retrieves one lead scoped to its agency.
func (r *Repository) GetByID(ctx context.Context, id, agencyID uuid.UUID) (*Lead, error) {
	query := `SELECT id, agency_id, name, phone, address, source, status, created_at, updated_at
		FROM leads WHERE id = $1 AND agency_id = $2`

	var lead Lead
	err := r.pool.QueryRow(ctx, query, id, agencyID).Scan(
		&lead.ID, &lead.AgencyID, &lead.Name, &lead.Phone, &lead.Address,
		&lead.Source, &lead.Status, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return &lead, nil
}

// ListNewByAgency returns the oldest leads still in status "new", capped for
// campaign batch dialing.
func (r *Repository) ListNewByAgency(ctx context.Context, agencyID uuid.UUID, limit int) ([]Lead, error) {
	query := `SELECT id, agency_id, name, phone, address, source, status, created_at, updated_at
		FROM leads WHERE agency_id = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, agencyID, StatusNew, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list new leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.AgencyID, &lead.Name, &lead.Phone, &lead.Address,
			&lead.Source, &lead.Status, &lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// UpdateStatus moves a lead through the pipeline.
func (r *Repository) UpdateStatus(ctx context.Context, leadID, agencyID uuid.UUID, status string) error {
	query := `UPDATE leads SET status = $3, updated_at = $4 WHERE id = $1 AND agency_id = $2`

	result, err := r.pool.Exec(ctx, query, leadID, agencyID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}

	return nil
}
