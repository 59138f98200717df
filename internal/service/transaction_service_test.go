package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memstore"
)

func newTestTransactionService(t *testing.T) (*TransactionService, *memstore.Store) {
	t.Helper()
	store := memstore.New(0)
	return NewTransactionService(store), store
}

func seedTransactions(store *memstore.Store, accountID uuid.UUID, n int, base time.Time) {
	for i := 0; i < n; i++ {
		id := uuid.Must(uuid.NewV4())
		store.PutTransaction(&storage.Transaction{
			ID:               id,
			AccountID:        accountID,
			CounterpartyFrom: "A",
			CounterpartyTo:   "B",
			Amount:           decimal.RequireFromString("5"),
			Description:      "item",
			Kind:             storage.KindIncome,
			RecordedAt:       base.Add(-time.Duration(i) * time.Minute),
			LinkID:           id,
		})
	}
}

func TestListTransactions_NoResults(t *testing.T) {
	svc, _ := newTestTransactionService(t)

	txs, nextCursor, err := svc.ListTransactions(context.Background(), uuid.Must(uuid.NewV4()), nil)

	assert.NoError(t, err)
	assert.Nil(t, txs)
	assert.Nil(t, nextCursor)
}

func TestListTransactions_SinglePage(t *testing.T) {
	svc, store := newTestTransactionService(t)

	accountID := uuid.Must(uuid.NewV4())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	seedTransactions(store, accountID, 2, now)

	txs, nextCursor, err := svc.ListTransactions(context.Background(), accountID, nil)

	assert.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Nil(t, nextCursor)

	tx := txs[0]
	assert.Equal(t, accountID, tx.AccountID)
	assert.Equal(t, "income", tx.Kind)
	assert.Equal(t, "item", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("5")))
	assert.True(t, tx.RecordedAt.Equal(now), "newest first")
}

func TestListTransactions_HasNextPage(t *testing.T) {
	svc, store := newTestTransactionService(t)

	accountID := uuid.Must(uuid.NewV4())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	seedTransactions(store, accountID, defaultLimit+1, now)

	txs, nextCursor, err := svc.ListTransactions(context.Background(), accountID, nil)

	assert.NoError(t, err)
	assert.Len(t, txs, defaultLimit, "truncated to default limit")

	require.NotNil(t, nextCursor)
	assert.Equal(t, defaultLimit, nextCursor.Position)
	assert.Equal(t, defaultLimit, nextCursor.Limit)
	assert.True(t, now.Equal(nextCursor.MaxRecordedAt), "derived from first row")
}

func TestListTransactions_WithCursor(t *testing.T) {
	svc, store := newTestTransactionService(t)

	accountID := uuid.Must(uuid.NewV4())
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	seedTransactions(store, accountID, 5, now)

	txs, nextCursor, err := svc.ListTransactions(context.Background(), accountID, &TransactionCursor{
		Position:      2,
		Limit:         2,
		MaxRecordedAt: now,
	})

	assert.NoError(t, err)
	assert.Len(t, txs, 2)

	require.NotNil(t, nextCursor)
	assert.Equal(t, 4, nextCursor.Position)
	assert.Equal(t, 2, nextCursor.Limit)
	assert.True(t, now.Equal(nextCursor.MaxRecordedAt), "echoed from cursor, not overridden by row data")
}

func TestListTransactions_CursorExcludesNewerRows(t *testing.T) {
	svc, store := newTestTransactionService(t)

	accountID := uuid.Must(uuid.NewV4())
	cursorTime := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	seedTransactions(store, accountID, 3, cursorTime)

	// A record committed after the first page was fetched.
	lateID := uuid.Must(uuid.NewV4())
	store.PutTransaction(&storage.Transaction{
		ID:         lateID,
		AccountID:  accountID,
		Kind:       storage.KindIncome,
		Amount:     decimal.RequireFromString("5"),
		RecordedAt: cursorTime.Add(time.Hour),
		LinkID:     lateID,
	})

	txs, _, err := svc.ListTransactions(context.Background(), accountID, &TransactionCursor{
		Position:      0,
		Limit:         10,
		MaxRecordedAt: cursorTime,
	})

	assert.NoError(t, err)
	assert.Len(t, txs, 3, "rows newer than the cursor bound are excluded")
	for _, tx := range txs {
		assert.NotEqual(t, lateID, tx.ID)
	}
}
