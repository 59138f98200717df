// Package ledger contains the double-entry transaction engine. A
// transfer records two linked immutable legs (a debit and a credit)
// and adjusts both account balances in one atomic store attempt; a
// reversal finds a record's linked counterpart, undoes both balance
// adjustments, and deletes both records the same way.
//
// The invariant both executors preserve: for every account, the sum of
// the signed amounts of the records referencing it equals its balance,
// at any point observed outside an in-flight attempt.
package ledger

import (
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Ledger holds both executors.
type Ledger struct {
	Transfer *TransferExecutor
	Reversal *ReversalExecutor
}

// New creates a Ledger backed by the given store.
func New(store storage.Store) *Ledger {
	return &Ledger{
		Transfer: NewTransferExecutor(store),
		Reversal: NewReversalExecutor(store),
	}
}
