package assignment

import (
	"context"
	"strings"
	"time"

	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

// agentStore is the persistence surface the service needs.
type agentStore interface {
	ListActiveAgents(ctx context.Context, agencyID uuid.UUID) ([]Agent, error)
	CountUpcomingAppointments(ctx context.Context, agentID, agencyID uuid.UUID) (int, error)
}

// Service picks the agent for a new appointment.
type Service struct {
	store agentStore
	log   *logger.Logger
}

// NewService creates the agent assignment service.
func NewService(store agentStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// AssignAgent selects an agent for a booking in three tiers:
//
//  1. first agent whose territory matches the address's postal code,
//  2. least busy among calendar-enabled agents available at the slot,
//  3. least busy among all agents.
//
// Returns nil when the agency has no active agents; the appointment is then
// booked unassigned and surfaced to the owner.
func (s *Service) AssignAgent(ctx context.Context, agencyID uuid.UUID, address string, scheduledAt time.Time) (*uuid.UUID, error) {
	agents, err := s.store.ListActiveAgents(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, nil
	}

	if code := ExtractPostalCode(address); code != "" {
		if matched := matchTerritory(agents, code); matched != nil {
			id := matched.ID
			return &id, nil
		}
	}

	var calendarAgents []Agent
	for _, agent := range agents {
		if agent.CalendarSyncEnabled && s.isAvailable(agent, scheduledAt) {
			calendarAgents = append(calendarAgents, agent)
		}
	}
	if len(calendarAgents) > 0 {
		return s.leastBusy(ctx, agencyID, calendarAgents)
	}

	return s.leastBusy(ctx, agencyID, agents)
}

// isAvailable checks whether the agent can take the slot. Calendar busy/free
// lookup is not integrated yet, so a calendar-enabled agent always counts as
// available and load balancing happens on appointment counts alone.
func (s *Service) isAvailable(_ Agent, _ time.Time) bool {
	return true
}

func (s *Service) leastBusy(ctx context.Context, agencyID uuid.UUID, agents []Agent) (*uuid.UUID, error) {
	best := agents[0]
	bestCount := -1

	for _, agent := range agents {
		count, err := s.store.CountUpcomingAppointments(ctx, agent.ID, agencyID)
		if err != nil {
			s.log.Error("failed to count agent load, skipping agent",
				"error", err,
				"agent_id", agent.ID.String(),
			)
			continue
		}
		if bestCount == -1 || count < bestCount {
			best = agent
			bestCount = count
		}
	}

	if bestCount == -1 {
		return nil, nil
	}

	id := best.ID
	return &id, nil
}

// matchTerritory returns the first agent whose territory ZIP equals the
// extracted postal code, regardless of current load. Equality is exact after
// trimming and uppercasing, so "8001" claims the 8001 code but not 80014.
func matchTerritory(agents []Agent, code string) *Agent {
	for i, agent := range agents {
		if agent.TerritoryZip == nil {
			continue
		}
		territory := strings.ToUpper(strings.TrimSpace(*agent.TerritoryZip))
		if territory != "" && territory == code {
			return &agents[i]
		}
	}
	return nil
}
