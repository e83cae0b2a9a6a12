package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// autoAssignAttempts bounds CAS retries when concurrent assignments race
// for the same least-loaded agent.
const autoAssignAttempts = 3

// AssignmentService owns agent selection and every load-counter increment.
type AssignmentService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		clock:      clock,
	}
}

// AutoAssign places the ticket with the least-loaded available agent of the
// ticket's category, ties broken by agent id. No eligible agent is a normal
// outcome: the ticket stays OPEN and both returns are nil-agent, nil-error.
// Ticket mutation and counter increment commit as one unit; a lost
// compare-and-increment race retries against refreshed state.
func (s *AssignmentService) AutoAssign(ctx context.Context, ticketID string) (*domain.User, *domain.Ticket, error) {
	for attempt := 0; attempt < autoAssignAttempts; attempt++ {
		ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil, nil, apperrors.MapError(err)
		}
		if ticket.Status.IsTerminal() {
			return nil, nil, apperrors.NewConflict("ticket already terminal", map[string]any{"ticket_id": ticketID})
		}

		candidate, err := s.pickCandidate(ctx, ticket.Category)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		if candidate == nil {
			s.logger.Info("no available agents for category",
				zap.String("ticket_id", ticketID),
				zap.String("category", string(ticket.Category)))
			return nil, ticket, nil
		}

		now := s.clock()
		var assigned *domain.Ticket
		err = s.store.WithinTx(ctx, func(tx repository.Store) error {
			t, err := tx.Tickets().GetByIDForUpdate(ctx, ticket.ID)
			if err != nil {
				return err
			}
			// the pre-read ran unlocked; a transition may have committed since
			if t.Status.IsTerminal() {
				return apperrors.NewConflict("ticket already terminal", map[string]any{"ticket_id": ticketID})
			}
			if t.AssigneeID != nil {
				// another request won the ticket; nothing to do
				assigned = t
				return nil
			}
			agent, err := tx.Users().GetByID(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if !agent.IsAgent() || !agent.IsAvailable {
				return apperrors.NewConflict("candidate no longer available", map[string]any{"agent_id": candidate.ID})
			}
			if err := tx.Users().IncrementLoad(ctx, candidate.ID, candidate.AssignedTickets); err != nil {
				return err
			}
			t.AssigneeID = &candidate.ID
			t.AssignedAt = &now
			t.Status = domain.TicketStatusInProgress
			t.UpdatedAt = now
			if err := tx.Tickets().Update(ctx, t); err != nil {
				return err
			}
			assigned = t
			return nil
		})
		if apperrors.IsConflict(err) {
			continue
		}
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		if assigned.AssigneeID != nil && *assigned.AssigneeID != candidate.ID {
			return nil, assigned, nil
		}

		candidate.AssignedTickets++
		s.publishAssignmentEvent(ctx, assigned, candidate.ID, now)
		return candidate, assigned, nil
	}
	return nil, nil, apperrors.NewConflict("assignment contention, retry", map[string]any{"ticket_id": ticketID})
}

// Reassign moves a ticket to the given agent, releasing the previous
// assignee's load attribution in the same transaction. Status is left
// untouched, unlike AutoAssign.
func (s *AssignmentService) Reassign(ctx context.Context, actorID, ticketID, newAgentID string) (*domain.Ticket, error) {
	now := s.clock()
	var ticket *domain.Ticket

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		t, err := tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if t.Status.IsTerminal() {
			return apperrors.NewConflict("cannot reassign a terminal ticket", map[string]any{"ticket_id": ticketID})
		}

		agent, err := tx.Users().GetByID(ctx, newAgentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err != nil || !agent.IsAgent() {
			return apperrors.NewValidationError("invalid agent", map[string]any{"agent_id": newAgentID})
		}

		if t.AssigneeID != nil && *t.AssigneeID == agent.ID {
			t.AssignedAt = &now
			t.UpdatedAt = now
			if err := tx.Tickets().Update(ctx, t); err != nil {
				return err
			}
			ticket = t
			return nil
		}

		if t.AssigneeID != nil {
			if err := tx.Users().DecrementLoad(ctx, *t.AssigneeID); err != nil {
				return err
			}
		}
		if err := tx.Users().IncrementLoad(ctx, agent.ID, agent.AssignedTickets); err != nil {
			return err
		}
		t.AssigneeID = &agent.ID
		t.AssignedAt = &now
		t.UpdatedAt = now
		if err := tx.Tickets().Update(ctx, t); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishAssignmentEvent(ctx, ticket, *ticket.AssigneeID, now)
	return ticket, nil
}

// SetAgentAvailability toggles whether an agent receives new assignments.
func (s *AssignmentService) SetAgentAvailability(ctx context.Context, agentID string, available bool) (*domain.User, error) {
	agent, err := s.store.Users().SetAvailability(ctx, agentID, available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// ListAgents exposes the agent directory.
func (s *AssignmentService) ListAgents(ctx context.Context, filter repository.AgentFilter) ([]domain.User, error) {
	agents, err := s.store.Users().ListAgents(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// pickCandidate returns the least-loaded available agent for the category,
// or nil when none exists. Ordering is re-applied here so selection stays
// deterministic regardless of the backing store.
func (s *AssignmentService) pickCandidate(ctx context.Context, category domain.TicketCategory) (*domain.User, error) {
	available := true
	agents, err := s.store.Users().ListAgents(ctx, repository.AgentFilter{
		Department: &category,
		Available:  &available,
	})
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, nil
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].AssignedTickets != agents[j].AssignedTickets {
			return agents[i].AssignedTickets < agents[j].AssignedTickets
		}
		return agents[i].ID < agents[j].ID
	})
	candidate := agents[0]
	return &candidate, nil
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, ticket *domain.Ticket, agentID string, assignedAt time.Time) {
	if s.dispatcher == nil || ticket == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		TicketKey: ticket.Key,
		ActorID:   agentID,
		Timestamp: s.clock(),
		Payload: events.TicketAssignedPayload{
			AgentID:    agentID,
			AssignedAt: assignedAt,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
