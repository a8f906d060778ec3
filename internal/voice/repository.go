package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"thavon_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CallLog is the durable record of one AI-driven phone call, uniquely keyed
// by the provider's call id.
type CallLog struct {
	ID              uuid.UUID
	AgencyID        uuid.UUID
	VapiCallID      string
	LeadID          *uuid.UUID
	AgentID         *uuid.UUID
	Status          CallStatus
	DurationSeconds int
	RecordingURL    *string
	Transcript      *string
	Summary         *string
	Language        *string
	Metadata        map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RetryStatus is the lifecycle state of a scheduled re-attempt.
type RetryStatus string

const (
	RetryPending   RetryStatus = "pending"
	RetryCompleted RetryStatus = "completed"
	RetrySkipped   RetryStatus = "skipped"
)

// CallRetry is a scheduled re-attempt of an unanswered call.
type CallRetry struct {
	ID          uuid.UUID
	CallID      uuid.UUID
	LeadID      uuid.UUID
	AgencyID    uuid.UUID
	RetryCount  int
	ScheduledAt time.Time
	Status      RetryStatus
	CreatedAt   time.Time
}

// Repository provides database operations for call logs and retries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new voice repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertCallLog inserts or updates the call log for a provider call id and
// returns the row id. Replays of the same webhook update the same row and
// the newest payload wins every column, including a stale update after a
// terminal status. That is an accepted limitation, not defended against.
func (r *Repository) UpsertCallLog(ctx context.Context, log *CallLog) (uuid.UUID, error) {
	metadata, err := json.Marshal(log.Metadata)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal call metadata: %w", err)
	}

	query := `
		INSERT INTO call_logs (
			id, agency_id, vapi_call_id, lead_id, agent_id, status,
			duration_seconds, recording_url, transcript, summary, language,
			metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13
		)
		ON CONFLICT (vapi_call_id) DO UPDATE SET
			status = EXCLUDED.status,
			duration_seconds = EXCLUDED.duration_seconds,
			recording_url = EXCLUDED.recording_url,
			transcript = EXCLUDED.transcript,
			summary = EXCLUDED.summary,
			language = EXCLUDED.language,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, query,
		log.ID, log.AgencyID, log.VapiCallID, log.LeadID, log.AgentID, log.Status,
		log.DurationSeconds, log.RecordingURL, log.Transcript, log.Summary, log.Language,
		metadata, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert call log: %w", err)
	}

	return id, nil
}

// GetCallLogByID retrieves one call log scoped to its agency.
func (r *Repository) GetCallLogByID(ctx context.Context, id, agencyID uuid.UUID) (*CallLog, error) {
	query := `SELECT id, agency_id, vapi_call_id, lead_id, agent_id, status,
		duration_seconds, recording_url, transcript, summary, language, metadata, created_at, updated_at
		FROM call_logs WHERE id = $1 AND agency_id = $2`

	var log CallLog
	var metadata []byte
	err := r.pool.QueryRow(ctx, query, id, agencyID).Scan(
		&log.ID, &log.AgencyID, &log.VapiCallID, &log.LeadID, &log.AgentID, &log.Status,
		&log.DurationSeconds, &log.RecordingURL, &log.Transcript, &log.Summary, &log.Language,
		&metadata, &log.CreatedAt, &log.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("call log not found")
		}
		return nil, fmt.Errorf("failed to get call log: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &log.Metadata); err != nil {
			return nil, fmt.Errorf("decode call metadata: %w", err)
		}
	}

	return &log, nil
}

// MaxRetryCount returns the highest retry_count recorded for a call, zero
// when no retries exist yet.
func (r *Repository) MaxRetryCount(ctx context.Context, callID, agencyID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(retry_count), 0) FROM call_retries WHERE call_id = $1 AND agency_id = $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, callID, agencyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get max retry count: %w", err)
	}

	return count, nil
}

// InsertRetry records a scheduled re-attempt.
func (r *Repository) InsertRetry(ctx context.Context, retry *CallRetry) error {
	query := `
		INSERT INTO call_retries (id, call_id, lead_id, agency_id, retry_count, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		retry.ID, retry.CallID, retry.LeadID, retry.AgencyID,
		retry.RetryCount, retry.ScheduledAt, retry.Status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert call retry: %w", err)
	}

	return nil
}

// GetRetryByID retrieves one retry row scoped to its agency.
func (r *Repository) GetRetryByID(ctx context.Context, id, agencyID uuid.UUID) (*CallRetry, error) {
	query := `SELECT id, call_id, lead_id, agency_id, retry_count, scheduled_at, status, created_at
		FROM call_retries WHERE id = $1 AND agency_id = $2`

	var retry CallRetry
	err := r.pool.QueryRow(ctx, query, id, agencyID).Scan(
		&retry.ID, &retry.CallID, &retry.LeadID, &retry.AgencyID,
		&retry.RetryCount, &retry.ScheduledAt, &retry.Status, &retry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("call retry not found")
		}
		return nil, fmt.Errorf("failed to get call retry: %w", err)
	}

	return &retry, nil
}

// UpdateRetryStatus marks a retry row executed or skipped.
func (r *Repository) UpdateRetryStatus(ctx context.Context, id, agencyID uuid.UUID, status RetryStatus) error {
	query := `UPDATE call_retries SET status = $3 WHERE id = $1 AND agency_id = $2`

	result, err := r.pool.Exec(ctx, query, id, agencyID, status)
	if err != nil {
		return fmt.Errorf("failed to update call retry status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("call retry not found")
	}

	return nil
}

// LinkPendingAppointment backfills call_id on the most recent unlinked
// appointment matching the call's correlation metadata. Bookings land
// before the call log exists (the function-call event precedes the
// end-of-call report), so the appointment is created with call_id NULL and
// linked here once the call row is persisted.
func (r *Repository) LinkPendingAppointment(ctx context.Context, callLogID, agencyID, leadID, agentID uuid.UUID) error {
	query := `
		UPDATE appointments SET call_id = $1
		WHERE id = (
			SELECT id FROM appointments
			WHERE agency_id = $2 AND lead_id = $3 AND agent_id = $4 AND call_id IS NULL
			ORDER BY created_at DESC
			LIMIT 1
		)`

	_, err := r.pool.Exec(ctx, query, callLogID, agencyID, leadID, agentID)
	if err != nil {
		return fmt.Errorf("failed to link appointment to call: %w", err)
	}

	return nil
}
