package billing

import (
	"context"

	"thavon_backend/platform/apperr"

	"github.com/google/uuid"
)

// StatusReader reads an agency's subscription status.
type StatusReader interface {
	GetSubscriptionStatus(ctx context.Context, agencyID uuid.UUID) (SubscriptionStatus, error)
}

// Gate decides whether a tenant may trigger billable work. The webhook
// ingestion path requires a hard "active" status; trial-aware checks live
// with the UI-facing endpoints, not here.
type Gate struct {
	repo StatusReader
}

// NewGate creates a subscription gate.
func NewGate(repo StatusReader) *Gate {
	return &Gate{repo: repo}
}

// Check returns nil when the agency may proceed. Unknown agencies yield a
// not-found error, anything other than an active subscription yields a
// forbidden error, so callers can map the two to distinct status codes.
func (g *Gate) Check(ctx context.Context, agencyID uuid.UUID) error {
	status, err := g.repo.GetSubscriptionStatus(ctx, agencyID)
	if err != nil {
		return err
	}

	if status != SubscriptionActive {
		return apperr.Forbidden("subscription inactive")
	}

	return nil
}
