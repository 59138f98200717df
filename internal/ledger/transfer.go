package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// TransferExecutor moves value between two accounts.
type TransferExecutor struct {
	store storage.Store
}

// NewTransferExecutor creates a new TransferExecutor.
func NewTransferExecutor(store storage.Store) *TransferExecutor {
	return &TransferExecutor{store: store}
}

// TransferResult identifies the two records created by a transfer. The
// debit record's id doubles as the link id shared by both legs.
type TransferResult struct {
	DebitID  uuid.UUID
	CreditID uuid.UUID
}

// Transfer moves amount from the source account to the target account.
//
// Within one atomic attempt it creates a debit record on the source
// (negative amount, kind expense), a credit record on the target
// (positive amount, kind income, same link id), and updates both
// balances. Either everything commits or nothing does; a conflicting
// concurrent writer causes the whole attempt to re-run on fresh reads.
func (e *TransferExecutor) Transfer(ctx context.Context, sourceID, targetID uuid.UUID, amount decimal.Decimal, description string) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrMissingDescription
	}

	var result *TransferResult
	err := e.store.RunAttempt(ctx, func(ctx context.Context, att storage.Attempt) error {
		source, err := att.GetAccount(ctx, sourceID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("source account %s: %w", sourceID, ErrAccountNotFound)
		}
		if err != nil {
			return err
		}

		target, err := att.GetAccount(ctx, targetID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("target account %s: %w", targetID, ErrAccountNotFound)
		}
		if err != nil {
			return err
		}

		// The debit record's own id is the link id for the pair.
		debitID := uuid.Must(uuid.NewV4())
		creditID := uuid.Must(uuid.NewV4())

		err = att.CreateTransaction(ctx, &storage.TransactionCreate{
			ID:               debitID,
			AccountID:        source.ID,
			CounterpartyFrom: source.Name,
			CounterpartyTo:   target.Name,
			Amount:           amount.Neg(),
			Description:      description,
			Kind:             storage.KindExpense,
			LinkID:           debitID,
		})
		if err != nil {
			return err
		}

		err = att.CreateTransaction(ctx, &storage.TransactionCreate{
			ID:               creditID,
			AccountID:        target.ID,
			CounterpartyFrom: source.Name,
			CounterpartyTo:   target.Name,
			Amount:           amount,
			Description:      description,
			Kind:             storage.KindIncome,
			LinkID:           debitID,
		})
		if err != nil {
			return err
		}

		if err := att.UpdateAccountBalance(ctx, source.ID, source.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := att.UpdateAccountBalance(ctx, target.ID, target.Balance.Add(amount)); err != nil {
			return err
		}

		result = &TransferResult{DebitID: debitID, CreditID: creditID}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}

	return result, nil
}
