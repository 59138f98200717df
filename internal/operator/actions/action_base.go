package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type IAction interface {
	Perform(ctx context.Context, l *ledger.Ledger) error
}
