// Package assignment provides agent selection for new appointments:
// territory matching on postal codes with least-busy fallbacks.
package assignment

import (
	"thavon_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the assignment service for composition. It registers no
// routes; other modules call it directly.
type Module struct {
	service *Service
}

// NewModule creates and initializes the assignment module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{service: NewService(repo, log)}
}

// Service returns the assignment service for cross-module wiring.
func (m *Module) Service() *Service {
	return m.service
}
