package storage

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// AttemptFunc is the body of one atomic attempt. It may be invoked more
// than once: the store re-runs it from scratch when a conflicting
// concurrent commit invalidates its reads.
type AttemptFunc func(ctx context.Context, att Attempt) error

// Store is the transactional store consumed by the ledger executors.
//
// RunAttempt executes fn as one atomic unit: all reads through the
// Attempt handle see a consistent snapshot, all staged writes commit
// together or not at all, and a conflicting concurrent modification
// causes the whole attempt to be discarded and re-run. Retries are
// bounded; once the budget is exhausted RunAttempt returns ErrConflict.
//
// The remaining methods read committed state outside any attempt.
// TransactionsByLink in particular backs the counterpart lookup during
// reversal and is evaluated outside attempt isolation; callers must
// treat its result as possibly stale.
//
//go:generate mockery --name Store --output mock_Store.go
type Store interface {
	RunAttempt(ctx context.Context, fn AttemptFunc) error

	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	TransactionsByLink(ctx context.Context, linkID uuid.UUID) ([]*Transaction, error)
	TransactionsByAccount(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error)
}

// Attempt is the handle passed to an AttemptFunc. Reads are snapshot
// reads registered for conflict detection; writes are staged and only
// become visible when the attempt commits. Update and delete calls do
// not fail on records that disappeared since they were read - the
// commit-time conflict check catches that case instead.
type Attempt interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)

	CreateTransaction(ctx context.Context, create *TransactionCreate) error
	UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}
