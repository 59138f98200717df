// Package pgstore implements the transactional store on PostgreSQL.
// Each attempt runs as one SERIALIZABLE transaction; serialization
// failures and deadlocks (SQLSTATE 40001/40P01) are retried with
// backoff up to the configured budget. now() is constant within a
// transaction, which provides the shared per-attempt timestamp.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage"
)

const defaultMaxRetries = 8

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	db         *sql.DB
	maxRetries uint64
}

var _ storage.Store = (*Store)(nil)

// Open connects using the environment config and returns a Store.
func Open(env *config.Config) (*Store, error) {
	db, err := sql.Open("postgres", ConnString(env))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", storage.ErrUnavailable, err)
	}
	return New(db, env.MaxAttemptRetries), nil
}

// New wraps an existing database handle. maxRetries bounds how many
// times a conflicted attempt is re-run; 0 selects the default budget.
func New(db *sql.DB, maxRetries uint64) *Store {
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	return &Store{db: db, maxRetries: maxRetries}
}

// ConnString assembles the lib/pq DSN from the environment config.
func ConnString(env *config.Config) string {
	return "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunAttempt implements storage.Store.
func (s *Store) RunAttempt(ctx context.Context, fn storage.AttemptFunc) error {
	operation := func() error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: begin attempt: %v", storage.ErrUnavailable, err))
		}

		att := &attempt{tx: tx}
		if err := fn(ctx, att); err != nil {
			_ = tx.Rollback()
			if isRetryable(err) {
				return fmt.Errorf("%w: %v", storage.ErrConflict, err)
			}
			return backoff.Permanent(err)
		}

		if err := tx.Commit(); err != nil {
			if isRetryable(err) {
				return fmt.Errorf("%w: %v", storage.ErrConflict, err)
			}
			return backoff.Permanent(fmt.Errorf("%w: commit: %v", storage.ErrUnavailable, err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("attempt retry budget exhausted: %w", storage.ErrConflict)
		}
		return err
	}
	return nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	return b
}

// isRetryable reports whether err is a serialization failure or
// deadlock, the two conflict signals worth re-running the attempt for.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

const accountColumns = "id, name, balance, created_at, updated_at"

// GetAccount reads a committed account from the pool.
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*storage.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*storage.Account, error) {
	var account storage.Account
	err := row.Scan(&account.ID, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

const transactionColumns = "id, account_id, counterparty_from, counterparty_to, amount, description, kind, link_id, recorded_at"

// GetTransaction reads a committed transaction record from the pool.
func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*storage.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)

	var transaction storage.Transaction
	err := row.Scan(
		&transaction.ID, &transaction.AccountID,
		&transaction.CounterpartyFrom, &transaction.CounterpartyTo,
		&transaction.Amount, &transaction.Description, &transaction.Kind,
		&transaction.LinkID, &transaction.RecordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// TransactionsByLink returns all committed records sharing linkID. It
// queries the pool, not any in-flight attempt, so the result may be
// stale relative to concurrent commits.
func (s *Store) TransactionsByLink(ctx context.Context, linkID uuid.UUID) ([]*storage.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE link_id = $1 ORDER BY recorded_at DESC, id DESC",
		linkID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// TransactionsByAccount returns committed records matching the filter,
// newest first, up to limit+1 rows so callers can detect a next page.
func (s *Store) TransactionsByAccount(ctx context.Context, filter *storage.TransactionFilter) ([]*storage.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions"
	var args []interface{}

	if filter != nil && filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		query += fmt.Sprintf(" WHERE account_id = $%d", len(args))
	}
	if filter != nil && filter.MaxRecordedAt != nil {
		connector := " WHERE"
		if len(args) > 0 {
			connector = " AND"
		}
		args = append(args, *filter.MaxRecordedAt)
		query += fmt.Sprintf("%s recorded_at <= $%d", connector, len(args))
	}
	query += " ORDER BY recorded_at DESC, id DESC"
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit+1)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter != nil && filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]*storage.Transaction, error) {
	defer rows.Close()

	var result []*storage.Transaction
	for rows.Next() {
		var transaction storage.Transaction
		err := rows.Scan(
			&transaction.ID, &transaction.AccountID,
			&transaction.CounterpartyFrom, &transaction.CounterpartyTo,
			&transaction.Amount, &transaction.Description, &transaction.Kind,
			&transaction.LinkID, &transaction.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, &transaction)
	}
	return result, rows.Err()
}
