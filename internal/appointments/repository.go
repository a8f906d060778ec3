package appointments

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

// Appointment statuses.
const (
	StatusScheduled   = "scheduled"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no_show"
	StatusRescheduled = "rescheduled"
)

// Appointment is a booked meeting between a lead and an agent.
type Appointment struct {
	ID          uuid.UUID
	AgencyID    uuid.UUID
	LeadID      uuid.UUID
	AgentID     *uuid.UUID
	CallID      *uuid.UUID
	ScheduledAt time.Time
	Notes       string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository provides database operations for appointments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new appointments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new appointment.
func (r *Repository) Create(ctx context.Context, appt *Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	query := `
		INSERT INTO appointments (id, agency_id, lead_id, agent_id, call_id, scheduled_at, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	_, err := r.pool.Exec(ctx, query,
		appt.ID, appt.AgencyID, appt.LeadID, appt.AgentID, appt.CallID,
		appt.ScheduledAt, appt.Notes, appt.Status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

// GetByID retrieves one appointment scoped to its agency.
func (r *Repository) GetByID(ctx context.Context, id, agencyID uuid.UUID) (*Appointment, error) {
	query := `SELECT id, agency_id, lead_id, agent_id, call_id, scheduled_at, notes, status, created_at, updated_at
		FROM appointments WHERE id = $1 AND agency_id = $2`

	var appt Appointment
	err := r.pool.QueryRow(ctx, query, id, agencyID).Scan(
		&appt.ID, &appt.AgencyID, &appt.LeadID, &appt.AgentID, &appt.CallID,
		&appt.ScheduledAt, &appt.Notes, &appt.Status, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment not found")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return &appt, nil
}

// UpdateStatus transitions an appointment's lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id, agencyID uuid.UUID, status string) error {
	query := `UPDATE appointments SET status = $3, updated_at = $4 WHERE id = $1 AND agency_id = $2`

	result, err := r.pool.Exec(ctx, query, id, agencyID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}

	return nil
}
