package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type TransferFunds struct {
	SourceAccountID uuid.UUID
	TargetAccountID uuid.UUID
	Amount          decimal.Decimal
	Description     string

	// Populated on success.
	DebitID  uuid.UUID
	CreditID uuid.UUID

	IAction
}

func (t *TransferFunds) Perform(ctx context.Context, l *ledger.Ledger) error {
	result, err := l.Transfer.Transfer(ctx, t.SourceAccountID, t.TargetAccountID, t.Amount, t.Description)
	if err != nil {
		return err
	}

	t.DebitID = result.DebitID
	t.CreditID = result.CreditID
	return nil
}
