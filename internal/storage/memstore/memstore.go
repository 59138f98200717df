// Package memstore is an in-memory implementation of the transactional
// store with optimistic concurrency control. Every committed record
// carries a version; an attempt records the version of everything it
// read (including reads that found nothing) and commit re-validates the
// whole read set under one mutex before applying the staged writes.
// Invalidated attempts are re-run with exponential backoff up to a
// bounded budget.
//
// It is the default backend and the substrate for the executor tests.
package memstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage"
)

const defaultMaxRetries = 8

const (
	collectionAccounts     = "accounts"
	collectionTransactions = "transactions"
)

// recordKey identifies one record for version tracking.
type recordKey struct {
	collection string
	id         uuid.UUID
}

// Store is an in-memory storage.Store.
type Store struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]storage.Account
	transactions map[uuid.UUID]storage.Transaction
	versions     map[recordKey]uint64

	maxRetries uint64
	now        func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New creates an empty Store. maxRetries bounds how many times a
// conflicted attempt is re-run; 0 selects the default budget.
func New(maxRetries uint64) *Store {
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	return &Store{
		accounts:     make(map[uuid.UUID]storage.Account),
		transactions: make(map[uuid.UUID]storage.Transaction),
		versions:     make(map[recordKey]uint64),
		maxRetries:   maxRetries,
		now:          time.Now,
	}
}

// RunAttempt implements storage.Store.
func (s *Store) RunAttempt(ctx context.Context, fn storage.AttemptFunc) error {
	operation := func() error {
		att := newAttempt(s)
		if err := fn(ctx, att); err != nil {
			return backoff.Permanent(err)
		}
		if err := att.commit(); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return err
			}
			return backoff.Permanent(err)
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

// GetAccount reads a committed account.
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*storage.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &account, nil
}

// GetTransaction reads a committed transaction record.
func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*storage.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &transaction, nil
}

// TransactionsByLink returns all committed records sharing linkID.
func (s *Store) TransactionsByLink(ctx context.Context, linkID uuid.UUID) ([]*storage.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*storage.Transaction
	for _, transaction := range s.transactions {
		if transaction.LinkID == linkID {
			record := transaction
			result = append(result, &record)
		}
	}
	sortTransactions(result)
	return result, nil
}

// TransactionsByAccount returns committed records matching the filter,
// newest first. Like the SQL backend it returns up to limit+1 rows so
// callers can detect a next page.
func (s *Store) TransactionsByAccount(ctx context.Context, filter *storage.TransactionFilter) ([]*storage.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*storage.Transaction
	for _, transaction := range s.transactions {
		if filter != nil {
			if filter.AccountID != nil && transaction.AccountID != *filter.AccountID {
				continue
			}
			if filter.MaxRecordedAt != nil && transaction.RecordedAt.After(*filter.MaxRecordedAt) {
				continue
			}
		}
		record := transaction
		matched = append(matched, &record)
	}
	sortTransactions(matched)

	if filter == nil {
		return matched, nil
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit+1 {
		matched = matched[:filter.Limit+1]
	}
	return matched, nil
}

// sortTransactions orders newest first, ID as tie-breaker, to match the
// SQL backend's ORDER BY recorded_at DESC, id DESC.
func sortTransactions(records []*storage.Transaction) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].RecordedAt.Equal(records[j].RecordedAt) {
			return records[i].RecordedAt.After(records[j].RecordedAt)
		}
		return bytes.Compare(records[i].ID.Bytes(), records[j].ID.Bytes()) > 0
	})
}

// PutAccount installs or replaces a committed account, standing in for
// the external system that provisions accounts. Zero timestamps are
// filled in.
func (s *Store) PutAccount(account *storage.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := *account
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	s.accounts[record.ID] = record
	s.versions[recordKey{collectionAccounts, record.ID}]++
}

// RemoveAccount deletes a committed account, standing in for external
// account management. Reversals of records pointing at a removed
// account skip the balance update.
func (s *Store) RemoveAccount(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, id)
	s.versions[recordKey{collectionAccounts, id}]++
}

// PutTransaction installs a committed transaction record directly,
// bypassing any attempt. Fixture use only.
func (s *Store) PutTransaction(transaction *storage.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := *transaction
	if record.RecordedAt.IsZero() {
		record.RecordedAt = s.now()
	}
	s.transactions[record.ID] = record
	s.versions[recordKey{collectionTransactions, record.ID}]++
}
