package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// Clock supplies the current time; injectable for deterministic SLA and
// resolution-time math in tests.
type Clock func() time.Time

// TicketService coordinates the ticket lifecycle: creation, status
// transitions, comments and deletion. All agent-load mutation triggered by
// lifecycle events runs here or in AssignmentService, nowhere else.
type TicketService struct {
	store       repository.Store
	assignments *AssignmentService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	clock       Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store       repository.Store
	Assignments *AssignmentService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       Clock
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:       deps.Store,
		assignments: deps.Assignments,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		clock:       clock,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// TicketListFilter describes listing filters applied on top of role scoping.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Limit      int
	Offset     int
}

// CreateTicket validates input, stamps the SLA snapshot and attempts
// auto-assignment. An unassignable ticket stays OPEN; that is a normal
// outcome, not an error.
func (s *TicketService) CreateTicket(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if _, ok := domain.ParseTicketPriority(string(input.Priority)); !ok {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}
	if _, ok := domain.ParseTicketCategory(string(input.Category)); !ok {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}

	now := s.clock()
	ticket := &domain.Ticket{
		RequesterID: requesterID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Category:    input.Category,
		SLA:         domain.ComputeSLA(input.Priority, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Tickets().Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		TicketKey: ticket.Key,
		ActorID:   requesterID,
		Payload: events.TicketCreatedPayload{
			RequesterID: ticket.RequesterID,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			Title:       ticket.Title,
			SLAHours:    ticket.SLA.Hours,
			DueDate:     ticket.SLA.DueDate,
		},
	})

	if s.assignments != nil {
		_, assigned, err := s.assignments.AutoAssign(ctx, ticket.ID)
		switch {
		case err != nil:
			s.logger.Warn("auto-assignment failed, ticket left unassigned",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		case assigned != nil:
			ticket = assigned
		}
	}
	return ticket, nil
}

// GetTicket fetches a ticket with its comment log.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets scoped to the actor's role: requesters see
// their own, agents their assigned, admins everything.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Categories: filter.Categories,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch actor.Role {
	case domain.UserRoleUser:
		repoFilter.RequesterID = &actor.ID
	case domain.UserRoleAgent:
		repoFilter.AssigneeID = &actor.ID
	}
	tickets, err := s.store.Tickets().ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus applies a status transition. The first transition into a
// terminal status stamps resolvedAt and decrements the assignee's load
// exactly once; repeating the transition is a no-op on both.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if _, ok := domain.ParseTicketStatus(string(newStatus)); !ok {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}

	now := s.clock()
	var ticket *domain.Ticket
	var oldStatus domain.TicketStatus

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		t, err := tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		oldStatus = t.Status
		if t.Status == newStatus {
			ticket = t
			return nil
		}
		if t.Status.IsTerminal() && !newStatus.IsTerminal() {
			return apperrors.NewConflict("ticket reopening not supported", map[string]any{
				"ticket_id": ticketID,
				"status":    t.Status,
			})
		}
		if newStatus.IsTerminal() && !t.Status.IsTerminal() {
			t.ResolvedAt = &now
			if t.AssigneeID != nil {
				if err := tx.Users().DecrementLoad(ctx, *t.AssigneeID); err != nil {
					return err
				}
			}
		}
		t.Status = newStatus
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

	if oldStatus != ticket.Status {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			TicketID:  ticket.ID,
			TicketKey: ticket.Key,
			ActorID:   actorID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
		if ticket.Status.IsTerminal() && !oldStatus.IsTerminal() {
			s.publishEvent(ctx, events.Event{
				Type:      events.EventTicketResolved,
				TicketID:  ticket.ID,
				TicketKey: ticket.Key,
				ActorID:   actorID,
				Payload: events.TicketResolvedPayload{
					RequesterID: ticket.RequesterID,
					AgentID:     ticket.AssigneeID,
					Status:      ticket.Status,
					ResolvedAt:  *ticket.ResolvedAt,
				},
			})
		}
	}
	return ticket, nil
}

// UpdatePriority changes priority and recomputes the SLA snapshot from the
// creation time. An unchanged priority leaves the due date untouched.
func (s *TicketService) UpdatePriority(ctx context.Context, actorID, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if _, ok := domain.ParseTicketPriority(string(newPriority)); !ok {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}

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
		if t.Priority == newPriority {
			ticket = t
			return nil
		}
		t.Priority = newPriority
		t.SLA = domain.ComputeSLA(newPriority, t.CreatedAt)
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
	return ticket, nil
}

// AddComment appends to the ordered comment log; never reorders or
// deduplicates.
func (s *TicketService) AddComment(ctx context.Context, authorID, ticketID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text required", nil)
	}
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	comment := &domain.Comment{
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: s.clock(),
	}
	if err := s.store.Tickets().AddComment(ctx, ticket.ID, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// DeleteTicket removes a ticket. A non-terminal assigned ticket releases its
// agent-load attribution before the record disappears.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		t, err := tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if !t.Status.IsTerminal() && t.AssigneeID != nil {
			if err := tx.Users().DecrementLoad(ctx, *t.AssigneeID); err != nil {
				return err
			}
		}
		return tx.Tickets().Delete(ctx, t.ID)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
