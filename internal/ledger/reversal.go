package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// ReversalExecutor deletes a transfer by unwinding both of its legs.
type ReversalExecutor struct {
	store storage.Store
}

// NewReversalExecutor creates a new ReversalExecutor.
func NewReversalExecutor(store storage.Store) *ReversalExecutor {
	return &ReversalExecutor{store: store}
}

// Reverse deletes the record at transactionID together with its linked
// counterpart, undoing both balance adjustments.
//
// Either leg's id works: the counterpart is found by link id, not by
// position in the pair. A record with no counterpart is legal (a
// single-leg orphan) and is unwound alone. More than one counterpart
// violates the pairing invariant and aborts with ErrCorruptLink. A
// record whose account no longer exists is still deleted; only the
// balance update is skipped.
func (e *ReversalExecutor) Reverse(ctx context.Context, transactionID uuid.UUID) error {
	err := e.store.RunAttempt(ctx, func(ctx context.Context, att storage.Attempt) error {
		primary, err := att.GetTransaction(ctx, transactionID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("transaction %s: %w", transactionID, ErrTransactionNotFound)
		}
		if err != nil {
			return err
		}

		// The counterpart lookup is a query-then-filter over committed
		// state, outside attempt isolation: the store model has no
		// uniqueness constraint to lean on, so the result is treated
		// as possibly stale and zero matches are tolerated.
		linked, err := e.store.TransactionsByLink(ctx, primary.LinkID)
		if err != nil {
			return err
		}

		var counterpart *storage.Transaction
		for _, candidate := range linked {
			if candidate.ID == primary.ID {
				continue
			}
			if counterpart != nil {
				return fmt.Errorf("link %s has multiple counterparts: %w", primary.LinkID, ErrCorruptLink)
			}
			counterpart = candidate
		}

		if err := reverseBalance(ctx, att, primary); err != nil {
			return err
		}

		if counterpart != nil {
			if err := reverseBalance(ctx, att, counterpart); err != nil {
				return err
			}
			if err := att.DeleteTransaction(ctx, counterpart.ID); err != nil {
				return err
			}
		}

		return att.DeleteTransaction(ctx, primary.ID)
	})

	return translateStoreError(err)
}

// reverseBalance stages the balance update that cancels one record's
// effect on its account. A missing account is not an error: the record
// outlived it and only the record deletion remains meaningful.
func reverseBalance(ctx context.Context, att storage.Attempt, record *storage.Transaction) error {
	account, err := att.GetAccount(ctx, record.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var balance decimal.Decimal
	switch record.Kind {
	case storage.KindExpense:
		balance = account.Balance.Add(record.Amount.Abs())
	default:
		balance = account.Balance.Sub(record.Amount)
	}

	return att.UpdateAccountBalance(ctx, account.ID, balance)
}
