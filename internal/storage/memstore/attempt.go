package memstore

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// attempt tracks the read set and staged writes of one atomic unit.
// Reads go to committed state and record the version they observed;
// commit validates every observed version and applies the staged writes
// under the store mutex, stamping them all with one timestamp.
type attempt struct {
	store *Store
	reads map[recordKey]uint64

	createdTransactions []*storage.TransactionCreate
	balanceUpdates      []balanceUpdate
	deletedTransactions []uuid.UUID
}

type balanceUpdate struct {
	accountID uuid.UUID
	balance   decimal.Decimal
}

var _ storage.Attempt = (*attempt)(nil)

func newAttempt(s *Store) *attempt {
	return &attempt{
		store: s,
		reads: make(map[recordKey]uint64),
	}
}

func (a *attempt) GetAccount(ctx context.Context, id uuid.UUID) (*storage.Account, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{collectionAccounts, id}
	a.reads[key] = s.versions[key]

	account, ok := s.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &account, nil
}

func (a *attempt) GetTransaction(ctx context.Context, id uuid.UUID) (*storage.Transaction, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{collectionTransactions, id}
	a.reads[key] = s.versions[key]

	transaction, ok := s.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &transaction, nil
}

func (a *attempt) CreateTransaction(ctx context.Context, create *storage.TransactionCreate) error {
	a.createdTransactions = append(a.createdTransactions, create)
	return nil
}

func (a *attempt) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	a.balanceUpdates = append(a.balanceUpdates, balanceUpdate{accountID: id, balance: balance})
	return nil
}

func (a *attempt) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	a.deletedTransactions = append(a.deletedTransactions, id)
	return nil
}

// commit validates the read set and applies the staged writes. Staged
// updates apply in order, so a later update to the same account wins.
func (a *attempt) commit() error {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, observed := range a.reads {
		if s.versions[key] != observed {
			return storage.ErrConflict
		}
	}

	now := s.now()

	for _, create := range a.createdTransactions {
		s.transactions[create.ID] = storage.Transaction{
			ID:               create.ID,
			AccountID:        create.AccountID,
			CounterpartyFrom: create.CounterpartyFrom,
			CounterpartyTo:   create.CounterpartyTo,
			Amount:           create.Amount,
			Description:      create.Description,
			Kind:             create.Kind,
			RecordedAt:       now,
			LinkID:           create.LinkID,
		}
		s.versions[recordKey{collectionTransactions, create.ID}]++
	}

	for _, update := range a.balanceUpdates {
		account, ok := s.accounts[update.accountID]
		if !ok {
			// Validated above: the account was absent when read, too.
			continue
		}
		account.Balance = update.balance
		account.UpdatedAt = now
		s.accounts[update.accountID] = account
		s.versions[recordKey{collectionAccounts, update.accountID}]++
	}

	for _, id := range a.deletedTransactions {
		delete(s.transactions, id)
		s.versions[recordKey{collectionTransactions, id}]++
	}

	return nil
}
