// Package repo contains all database access logic for the truck-billing service.
// Each table has its own file with an interface and a Postgres implementation.
// No business logic lives here: only SQL, type mapping and error mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner is a db that can open a transaction. On a pgx.Tx, Begin opens a
// savepoint, so a TxRunner built on a test transaction still rolls back cleanly.
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scanX helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles one repository per table, all bound to the same db handle.
// Services receive a Repos for plain reads and get a transaction-bound Repos
// from a TxRunner for multi-table writes.
type Repos struct {
	Users        UserRepo
	Roles        RoleRepo
	Teams        TeamRepo
	Drivers      DriverRepo
	Cars         CarRepo
	Items        ItemRepo
	Billings     BillingRepo
	BillingItems BillingItemRepo
}

// NewRepos constructs every repository on top of db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRepos(db db) Repos {
	return Repos{
		Users:        NewUserRepo(db),
		Roles:        NewRoleRepo(db),
		Teams:        NewTeamRepo(db),
		Drivers:      NewDriverRepo(db),
		Cars:         NewCarRepo(db),
		Items:        NewItemRepo(db),
		Billings:     NewBillingRepo(db),
		BillingItems: NewBillingItemRepo(db),
	}
}

// TxRunner runs fn inside one database transaction. fn receives repositories
// bound to that transaction. If fn returns an error nothing it did is visible
// to other callers.
type TxRunner interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}

// PgTxRunner is the pgx implementation of TxRunner.
type PgTxRunner struct {
	db beginner
}

// NewTxRunner constructs a TxRunner backed by the provided connection.
func NewTxRunner(db beginner) *PgTxRunner {
	return &PgTxRunner{db: db}
}

// InTx begins a transaction, runs fn and commits. Any error from fn rolls
// the transaction back and is returned unchanged; begin and commit failures
// are returned as *domain.StoreError.
func (r *PgTxRunner) InTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.NewStoreError("repo.TxRunner.InTx: begin", err)
	}
	// Rollback after a successful Commit is a no-op returning pgx.ErrTxClosed.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewStoreError("repo.TxRunner.InTx: commit", err)
	}
	return nil
}

// mapErr translates a pgx failure into the domain error taxonomy:
//   - no rows            → domain.ErrNotFound
//   - unique violation   → *domain.StoreError wrapping domain.ErrDuplicate
//   - everything else    → *domain.StoreError
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.NewStoreError(op, errors.Join(domain.ErrDuplicate, err))
	}
	return domain.NewStoreError(op, err)
}
