package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// AccountService handles read-only account lookups. Account
// provisioning is owned by an external system; balances change only
// through the ledger executors.
type AccountService struct {
	store storage.Store
}

// NewAccountService creates a new AccountService.
func NewAccountService(store storage.Store) *AccountService {
	return &AccountService{store: store}
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	row, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:        row.ID,
		Name:      row.Name,
		Balance:   row.Balance,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
