package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// memStore is an in-memory repository.Store for service tests. Transactions
// serialize on txMu and roll back by snapshot restore; repository calls made
// outside a transaction also take txMu so they never observe or clobber
// uncommitted state. Counter mutations keep the same compare-and-increment
// semantics as the SQL implementation.
type memStore struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	tickets map[string]*domain.Ticket
	users   map[string]*domain.User
	keySeq  int
}

func newMemStore() *memStore {
	return &memStore{
		tickets: make(map[string]*domain.Ticket),
		users:   make(map[string]*domain.User),
	}
}

func (s *memStore) Tickets() repository.TicketRepository { return &memTicketRepo{s: s} }
func (s *memStore) Users() repository.UserRepository     { return &memUserRepo{s: s} }

func (s *memStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	ticketSnap := make(map[string]*domain.Ticket, len(s.tickets))
	for id, t := range s.tickets {
		ticketSnap[id] = copyTicket(t)
	}
	userSnap := make(map[string]*domain.User, len(s.users))
	for id, u := range s.users {
		cp := *u
		userSnap[id] = &cp
	}
	keySnap := s.keySeq
	s.mu.Unlock()

	if err := fn(&memTxStore{s: s}); err != nil {
		s.mu.Lock()
		s.tickets = ticketSnap
		s.users = userSnap
		s.keySeq = keySnap
		s.mu.Unlock()
		return err
	}
	return nil
}

// memTxStore is the transaction-bound view: repository calls skip txMu
// (already held) and nested WithinTx reuses the open transaction.
type memTxStore struct {
	s *memStore
}

func (v *memTxStore) Tickets() repository.TicketRepository { return &memTicketRepo{s: v.s, tx: true} }
func (v *memTxStore) Users() repository.UserRepository     { return &memUserRepo{s: v.s, tx: true} }
func (v *memTxStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(v)
}

// lock acquires what a repository call needs: outside a transaction the
// transaction lock too, so standalone writes serialize with open
// transactions.
func (s *memStore) lock(tx bool) func() {
	if tx {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type memTicketRepo struct {
	s  *memStore
	tx bool
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lock(r.tx)()

	ticket.ID = uuid.NewString()
	r.s.keySeq++
	ticket.Key = fmt.Sprintf("TKT-%05d", r.s.keySeq)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = ticket.CreatedAt
	}
	r.s.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lock(r.tx)()

	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	defer r.s.lock(r.tx)()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyTicket(t), nil
}

func (r *memTicketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *memTicketRepo) GetByKey(_ context.Context, key string) (*domain.Ticket, error) {
	defer r.s.lock(r.tx)()

	for _, t := range r.s.tickets {
		if t.Key == key {
			return copyTicket(t), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) AddComment(_ context.Context, ticketID string, comment *domain.Comment) error {
	defer r.s.lock(r.tx)()

	t, ok := r.s.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	comment.ID = uuid.NewString()
	t.Comments = append(t.Comments, *comment)
	t.UpdatedAt = comment.CreatedAt
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()

	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	return nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	defer r.s.lock(r.tx)()

	var result []domain.Ticket
	for _, t := range r.s.tickets {
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsValue(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsValue(filter.Priorities, t.Priority) {
			continue
		}
		if len(filter.Categories) > 0 && !containsValue(filter.Categories, t.Category) {
			continue
		}
		result = append(result, *copyTicket(t))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	defer r.s.lock(r.tx)()

	result := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, t := range r.s.tickets {
		result = append(result, *copyTicket(t))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type memUserRepo struct {
	s  *memStore
	tx bool
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	defer r.s.lock(r.tx)()

	user.ID = uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	defer r.s.lock(r.tx)()

	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	defer r.s.lock(r.tx)()

	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.s.lock(r.tx)()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	defer r.s.lock(r.tx)()

	var result []domain.User
	for _, u := range r.s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) ListAgents(_ context.Context, filter repository.AgentFilter) ([]domain.User, error) {
	defer r.s.lock(r.tx)()

	var result []domain.User
	for _, u := range r.s.users {
		if u.Role != domain.UserRoleAgent {
			continue
		}
		if filter.Department != nil && (u.Department == nil || *u.Department != *filter.Department) {
			continue
		}
		if filter.Available != nil && u.IsAvailable != *filter.Available {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssignedTickets != result[j].AssignedTickets {
			return result[i].AssignedTickets < result[j].AssignedTickets
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *memUserRepo) IncrementLoad(_ context.Context, id string, expected int) error {
	defer r.s.lock(r.tx)()

	u, ok := r.s.users[id]
	if !ok || u.Role != domain.UserRoleAgent || u.AssignedTickets != expected {
		return apperrors.NewConflict("agent load changed concurrently", map[string]any{"agent_id": id})
	}
	u.AssignedTickets++
	return nil
}

func (r *memUserRepo) DecrementLoad(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()

	u, ok := r.s.users[id]
	if ok && u.AssignedTickets > 0 {
		u.AssignedTickets--
	}
	return nil
}

func (r *memUserRepo) SetAvailability(_ context.Context, id string, available bool) (*domain.User, error) {
	defer r.s.lock(r.tx)()

	u, ok := r.s.users[id]
	if !ok || u.Role != domain.UserRoleAgent {
		return nil, pgx.ErrNoRows
	}
	u.IsAvailable = available
	cp := *u
	return &cp, nil
}

// hookedStore wraps a Store and runs a callback once, right before the first
// transaction opens. It reproduces a write committed by a concurrent request
// in the window between an unlocked read and the locked re-read.
type hookedStore struct {
	repository.Store
	once     sync.Once
	beforeTx func()
}

func (h *hookedStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	h.once.Do(func() {
		if h.beforeTx != nil {
			h.beforeTx()
		}
	})
	return h.Store.WithinTx(ctx, fn)
}

// contendedStore fails every transaction with a conflict, as if another
// writer always wins the row.
type contendedStore struct {
	repository.Store
}

func (c *contendedStore) WithinTx(context.Context, func(repository.Store) error) error {
	return apperrors.NewConflict("agent load changed concurrently", nil)
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	cp := *t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		cp.AssigneeID = &id
	}
	if t.AssignedAt != nil {
		at := *t.AssignedAt
		cp.AssignedAt = &at
	}
	if t.ResolvedAt != nil {
		at := *t.ResolvedAt
		cp.ResolvedAt = &at
	}
	cp.Comments = append([]domain.Comment(nil), t.Comments...)
	return &cp
}

func containsValue[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
