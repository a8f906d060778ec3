// Package billing provides the subscription gate for tenant billing state.
package billing

import (
	"context"
	"errors"
	"fmt"

	"thavon_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionStatus is the billing state of an agency.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Repository provides database access to agency billing state.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new billing repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSubscriptionStatus returns the subscription status for an agency.
func (r *Repository) GetSubscriptionStatus(ctx context.Context, agencyID uuid.UUID) (SubscriptionStatus, error) {
	var status string
	query := `SELECT subscription_status FROM agencies WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, agencyID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("agency not found")
		}
		return "", fmt.Errorf("failed to get subscription status: %w", err)
	}

	return SubscriptionStatus(status), nil
}
