package notification

import (
	"context"
	"errors"
	"fmt"

	"thavon_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Contact is a notification recipient.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Repository resolves notification recipients from the database.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new notification repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOwnerContact returns the agency owner's contact details.
func (r *Repository) GetOwnerContact(ctx context.Context, agencyID uuid.UUID) (*Contact, error) {
	query := `SELECT u.name, u.email, COALESCE(u.phone, '')
		FROM agency_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.agency_id = $1 AND m.role = 'owner'
		ORDER BY m.created_at ASC
		LIMIT 1`

	var contact Contact
	err := r.pool.QueryRow(ctx, query, agencyID).Scan(&contact.Name, &contact.Email, &contact.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("agency has no owner")
		}
		return nil, fmt.Errorf("failed to get owner contact: %w", err)
	}

	return &contact, nil
}

// GetAgentContact returns an agent's contact details.
func (r *Repository) GetAgentContact(ctx context.Context, agentID, agencyID uuid.UUID) (*Contact, error) {
	query := `SELECT name, email, COALESCE(phone, '')
		FROM agents WHERE id = $1 AND agency_id = $2`

	var contact Contact
	err := r.pool.QueryRow(ctx, query, agentID, agencyID).Scan(&contact.Name, &contact.Email, &contact.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("agent not found")
		}
		return nil, fmt.Errorf("failed to get agent contact: %w", err)
	}

	return &contact, nil
}

// GetLeadName returns a lead's display name for notification text.
func (r *Repository) GetLeadName(ctx context.Context, leadID, agencyID uuid.UUID) (string, error) {
	query := `SELECT name FROM leads WHERE id = $1 AND agency_id = $2`

	var name string
	err := r.pool.QueryRow(ctx, query, leadID, agencyID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("lead not found")
		}
		return "", fmt.Errorf("failed to get lead name: %w", err)
	}

	return name, nil
}
