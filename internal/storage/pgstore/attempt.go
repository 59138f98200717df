package pgstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// attempt wraps one SERIALIZABLE transaction. Statements execute
// immediately; rollback discards them, so there is no separate staging
// step. Timestamps use now(), which Postgres pins to the transaction
// start, giving every write in the attempt the same value.
type attempt struct {
	tx *sql.Tx
}

var _ storage.Attempt = (*attempt)(nil)

func (a *attempt) GetAccount(ctx context.Context, id uuid.UUID) (*storage.Account, error) {
	row := a.tx.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row)
}

func (a *attempt) GetTransaction(ctx context.Context, id uuid.UUID) (*storage.Transaction, error) {
	row := a.tx.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)

	var transaction storage.Transaction
	err := row.Scan(
		&transaction.ID, &transaction.AccountID,
		&transaction.CounterpartyFrom, &transaction.CounterpartyTo,
		&transaction.Amount, &transaction.Description, &transaction.Kind,
		&transaction.LinkID, &transaction.RecordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (a *attempt) CreateTransaction(ctx context.Context, create *storage.TransactionCreate) error {
	_, err := a.tx.ExecContext(ctx,
		`INSERT INTO transactions
			(id, account_id, counterparty_from, counterparty_to, amount, description, kind, link_id, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		create.ID, create.AccountID,
		create.CounterpartyFrom, create.CounterpartyTo,
		create.Amount, create.Description, create.Kind, create.LinkID,
	)
	return err
}

func (a *attempt) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	_, err := a.tx.ExecContext(ctx,
		"UPDATE accounts SET balance = $2, updated_at = now() WHERE id = $1",
		id, balance)
	return err
}

func (a *attempt) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	_, err := a.tx.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = $1", id)
	return err
}
