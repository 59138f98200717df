package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type DeleteTransaction struct {
	TransactionID uuid.UUID

	IAction
}

func (d *DeleteTransaction) Perform(ctx context.Context, l *ledger.Ledger) error {
	return l.Reversal.Reverse(ctx, d.TransactionID)
}
