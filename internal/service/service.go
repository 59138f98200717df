package service

import (
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Service holds the read-side services. Writes go through the operator
// and the ledger executors, not through here.
type Service struct {
	Transaction *TransactionService
	Account     *AccountService
}

// NewService creates a new Service with the given store.
func NewService(store storage.Store) *Service {
	return &Service{
		Transaction: NewTransactionService(store),
		Account:     NewAccountService(store),
	}
}
