package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the CRM settings and lead details needed for a push.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new crm repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetFollowUpBossKey returns the agency's Follow Up Boss API key, empty when
// the agency has not connected the integration.
func (r *Repository) GetFollowUpBossKey(ctx context.Context, agencyID uuid.UUID) (string, error) {
	query := `SELECT COALESCE(fub_api_key, '') FROM agencies WHERE id = $1`

	var key string
	err := r.pool.QueryRow(ctx, query, agencyID).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get crm key: %w", err)
	}

	return key, nil
}

// GetLeadContact returns a lead's name and phone for the CRM person match.
func (r *Repository) GetLeadContact(ctx context.Context, leadID, agencyID uuid.UUID) (name, phone string, err error) {
	query := `SELECT name, phone FROM leads WHERE id = $1 AND agency_id = $2`

	err = r.pool.QueryRow(ctx, query, leadID, agencyID).Scan(&name, &phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("lead not found for crm push")
		}
		return "", "", fmt.Errorf("failed to get lead contact: %w", err)
	}

	return name, phone, nil
}
