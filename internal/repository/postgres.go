package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier abstracts the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxStore is the postgres-backed Store.
type PgxStore struct {
	pool    *pgxpool.Pool
	q       querier
	tickets TicketRepository
	users   UserRepository
}

// NewPgxStore instantiates the store over a connection pool.
func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	s := &PgxStore{pool: pool, q: pool}
	s.tickets = &ticketRepository{q: s}
	s.users = &userRepository{q: s}
	return s
}

// Tickets returns the ticket repository bound to this store.
func (s *PgxStore) Tickets() TicketRepository {
	return s.tickets
}

// Users returns the user repository bound to this store.
func (s *PgxStore) Users() UserRepository {
	return s.users
}

// WithinTx runs fn against a transaction-bound store, committing on success
// and rolling back on error. Nested calls reuse the open transaction.
func (s *PgxStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// already inside a transaction
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	txStore := &PgxStore{q: tx}
	txStore.tickets = &ticketRepository{q: txStore}
	txStore.users = &userRepository{q: txStore}

	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Exec forwards to the underlying pool or transaction.
func (s *PgxStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.q == nil {
		return pgconn.CommandTag{}, errors.New("store not connected")
	}
	return s.q.Exec(ctx, sql, args...)
}

// Query forwards to the underlying pool or transaction.
func (s *PgxStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.q == nil {
		return nil, errors.New("store not connected")
	}
	return s.q.Query(ctx, sql, args...)
}

// QueryRow forwards to the underlying pool or transaction.
func (s *PgxStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.q.QueryRow(ctx, sql, args...)
}
