package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Agent is a human agent who can take appointments for an agency. A nil
// TerritoryZip means the agent has no territory claim and competes only in
// the least-busy tiers.
type Agent struct {
	ID                  uuid.UUID
	AgencyID            uuid.UUID
	Name                string
	Email               string
	Phone               string
	TerritoryZip        *string
	CalendarSyncEnabled bool
	Active              bool
}

// Repository provides database operations for agents.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new assignment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActiveAgents returns all active agents for an agency.
func (r *Repository) ListActiveAgents(ctx context.Context, agencyID uuid.UUID) ([]Agent, error) {
	query := `SELECT id, agency_id, name, email, phone, territory_zip, calendar_sync_enabled, active
		FROM agents WHERE agency_id = $1 AND active
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var agent Agent
		if err := rows.Scan(
			&agent.ID, &agent.AgencyID, &agent.Name, &agent.Email, &agent.Phone,
			&agent.TerritoryZip, &agent.CalendarSyncEnabled, &agent.Active,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, agent)
	}

	return agents, rows.Err()
}

// CountUpcomingAppointments returns how many scheduled appointments an agent
// has from now on. Used as the load metric for least-busy selection.
func (r *Repository) CountUpcomingAppointments(ctx context.Context, agentID, agencyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM appointments
		WHERE agent_id = $1 AND agency_id = $2 AND status = 'scheduled' AND scheduled_at >= $3`

	var count int
	if err := r.pool.QueryRow(ctx, query, agentID, agencyID, time.Now().UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	return count, nil
}
