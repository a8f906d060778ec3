package assignment

import (
	"context"
	"testing"
	"time"

	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeAgentStore struct {
	agents []Agent
	counts map[uuid.UUID]int
}

func (s *fakeAgentStore) ListActiveAgents(context.Context, uuid.UUID) ([]Agent, error) {
	return s.agents, nil
}

func (s *fakeAgentStore) CountUpcomingAppointments(_ context.Context, agentID, _ uuid.UUID) (int, error) {
	return s.counts[agentID], nil
}

func newAgent(territoryZip string, calendar bool) Agent {
	agent := Agent{
		ID:                  uuid.New(),
		Name:                "Agent",
		CalendarSyncEnabled: calendar,
		Active:              true,
	}
	if territoryZip != "" {
		agent.TerritoryZip = &territoryZip
	}
	return agent
}

func TestAssignAgentTerritoryMatchWins(t *testing.T) {
	territorial := newAgent("80014", false)
	idle := newAgent("", true)

	store := &fakeAgentStore{
		agents: []Agent{idle, territorial},
		counts: map[uuid.UUID]int{territorial.ID: 5, idle.ID: 0},
	}
	svc := NewService(store, logger.New("test"))

	got, err := svc.AssignAgent(context.Background(), uuid.New(), "123 Main St, Denver CO 80014", time.Now())
	if err != nil {
		t.Fatalf("AssignAgent returned error: %v", err)
	}
	if got == nil || *got != territorial.ID {
		t.Error("territory match must win over less busy agents")
	}
}

func TestAssignAgentTerritoryFirstMatchWins(t *testing.T) {
	first := newAgent("80014", false)
	second := newAgent("80014", false)

	store := &fakeAgentStore{
		agents: []Agent{first, second},
		counts: map[uuid.UUID]int{first.ID: 9, second.ID: 0},
	}
	svc := NewService(store, logger.New("test"))

	got, err := svc.AssignAgent(context.Background(), uuid.New(), "Denver CO 80014", time.Now())
	if err != nil {
		t.Fatalf("AssignAgent returned error: %v", err)
	}
	if got == nil || *got != first.ID {
		t.Error("the first matching territory agent wins, load is not consulted in tier one")
	}
}

func TestAssignAgentTerritoryRequiresExactMatch(t *testing.T) {
	nearMiss := newAgent("800", false)
	fallback := newAgent("", false)

	store := &fakeAgentStore{
		agents: []Agent{nearMiss, fallback},
		counts: map[uuid.UUID]int{nearMiss.ID: 2, fallback.ID: 0},
	}
	svc := NewService(store, logger.New("test"))

	got, err := svc.AssignAgent(context.Background(), uuid.New(), "Denver CO 80014", time.Now())
	if err != nil {
		t.Fatalf("AssignAgent returned error: %v", err)
	}
	if got == nil || *got != fallback.ID {
		t.Error("a territory prefix is not a match, selection must fall through to least busy")
	}
}

func TestAssignAgentCalendarTier(t *testing.T) {
	busyCalendar := newAgent("", true)
	idleCalendar := newAgent("", true)
	noCalendar := newAgent("", false)

	store := &fakeAgentStore{
		agents: []Agent{busyCalendar, idleCalendar, noCalendar},
		counts: map[uuid.UUID]int{busyCalendar.ID: 3, idleCalendar.ID: 1, noCalendar.ID: 0},
	}
	svc := NewService(store, logger.New("test"))

	got, err := svc.AssignAgent(context.Background(), uuid.New(), "no postal code here", time.Now())
	if err != nil {
		t.Fatalf("AssignAgent returned error: %v", err)
	}
	if got == nil || *got != idleCalendar.ID {
		t.Error("least busy calendar-enabled agent should be picked before non-calendar agents")
	}
}

func TestAssignAgentGlobalLeastBusy(t *testing.T) {
	a := newAgent("", false)
	b := newAgent("", false)
	c := newAgent("", false)

	store := &fakeAgentStore{
		agents: []Agent{a, b, c},
		counts: map[uuid.UUID]int{a.ID: 2, b.ID: 0, c.ID: 1},
	}
	svc := NewService(store, logger.New("test"))

	got, err := svc.AssignAgent(context.Background(), uuid.New(), "", time.Now())
	if err != nil {
		t.Fatalf("AssignAgent returned error: %v", err)
	}
	if got == nil || *got != b.ID {
		t.Error("least busy agent should be picked")
	}
}

func TestAssignAgentNoAgents(t *testing.T) {
	svc := NewService(&fakeAgentStore{}, logger.New("test"))

	got, err := svc.AssignAgent(context.Background(), uuid.New(), "80014", time.Now())
	if err != nil {
		t.Fatalf("AssignAgent returned error: %v", err)
	}
	if got != nil {
		t.Error("no agents must yield a nil assignment, not an error")
	}
}
