package repository

import (
	"context"
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures ticket listing parameters.
type TicketFilter struct {
	RequesterID *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// AgentFilter captures agent directory queries.
type AgentFilter struct {
	Department *domain.TicketCategory
	Available  *bool
}

// UserFilter captures user listing parameters.
type UserFilter struct {
	Role   *domain.UserRole
	Limit  int
	Offset int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIDForUpdate locks the ticket row for the duration of the
	// surrounding transaction so ticket and counter mutations serialize.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	GetByKey(ctx context.Context, key string) (*domain.Ticket, error)
	AddComment(ctx context.Context, ticketID string, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListAll returns the full collection for analytics snapshots.
	ListAll(ctx context.Context) ([]domain.Ticket, error)
}

// UserRepository handles persistence for users and the agent directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	// ListAgents returns agents ordered by (assigned_tickets asc, id asc).
	ListAgents(ctx context.Context, filter AgentFilter) ([]domain.User, error)
	// IncrementLoad adds one to the agent's load counter only when the
	// counter still equals expected; a lost race yields a conflict error.
	IncrementLoad(ctx context.Context, id string, expected int) error
	// DecrementLoad subtracts one from the agent's load counter, never
	// going below zero.
	DecrementLoad(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, id string, available bool) (*domain.User, error)
}

// Store bundles the repositories behind a single transaction boundary.
// Ticket and agent-counter mutations belonging to one lifecycle operation
// run inside WithinTx and commit together or not at all.
type Store interface {
	Tickets() TicketRepository
	Users() UserRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}
