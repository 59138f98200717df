package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/storage"
)

func seedAccount(s *Store, balance string) uuid.UUID {
	id := uuid.Must(uuid.NewV4())
	s.PutAccount(&storage.Account{
		ID:      id,
		Name:    "acct",
		Balance: decimal.RequireFromString(balance),
	})
	return id
}

func TestGetAccount_NotFound(t *testing.T) {
	s := New(0)
	_, err := s.GetAccount(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunAttempt_AppliesStagedWrites(t *testing.T) {
	s := New(0)
	accountID := seedAccount(s, "100")
	recordID := uuid.Must(uuid.NewV4())

	err := s.RunAttempt(context.Background(), func(ctx context.Context, att storage.Attempt) error {
		account, err := att.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if err := att.CreateTransaction(ctx, &storage.TransactionCreate{
			ID:        recordID,
			AccountID: accountID,
			Amount:    decimal.RequireFromString("-10"),
			Kind:      storage.KindExpense,
			LinkID:    recordID,
		}); err != nil {
			return err
		}
		return att.UpdateAccountBalance(ctx, accountID, account.Balance.Sub(decimal.RequireFromString("10")))
	})
	require.NoError(t, err)

	account, err := s.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("90")))

	record, err := s.GetTransaction(context.Background(), recordID)
	require.NoError(t, err)
	assert.False(t, record.RecordedAt.IsZero(), "commit stamps the record")
	assert.True(t, record.RecordedAt.Equal(account.UpdatedAt), "one timestamp per attempt")
}

func TestRunAttempt_CallbackErrorDiscardsWrites(t *testing.T) {
	s := New(0)
	accountID := seedAccount(s, "100")
	recordID := uuid.Must(uuid.NewV4())

	invocations := 0
	boom := errors.New("boom")
	err := s.RunAttempt(context.Background(), func(ctx context.Context, att storage.Attempt) error {
		invocations++
		_ = att.CreateTransaction(ctx, &storage.TransactionCreate{ID: recordID, AccountID: accountID, LinkID: recordID})
		_ = att.UpdateAccountBalance(ctx, accountID, decimal.Zero)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, invocations, "callback errors are not retried")

	account, err := s.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("100")), "nothing applied")
	_, err = s.GetTransaction(context.Background(), recordID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunAttempt_ConflictRetries(t *testing.T) {
	s := New(0)
	accountID := seedAccount(s, "100")

	invocations := 0
	err := s.RunAttempt(context.Background(), func(ctx context.Context, att storage.Attempt) error {
		invocations++
		account, err := att.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		// First pass only: a competing attempt commits between our
		// read and our commit, invalidating the read set.
		if invocations == 1 {
			competing := s.RunAttempt(ctx, func(ctx context.Context, att storage.Attempt) error {
				inner, err := att.GetAccount(ctx, accountID)
				if err != nil {
					return err
				}
				return att.UpdateAccountBalance(ctx, accountID, inner.Balance.Sub(decimal.RequireFromString("1")))
			})
			if competing != nil {
				return competing
			}
		}

		return att.UpdateAccountBalance(ctx, accountID, account.Balance.Sub(decimal.RequireFromString("10")))
	})
	require.NoError(t, err)
	assert.Equal(t, 2, invocations, "conflicted attempt re-runs once")

	account, err := s.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("89")), "both commits applied, in order")
}

func TestRunAttempt_RetryBudgetExhausted(t *testing.T) {
	s := New(2)
	accountID := seedAccount(s, "100")

	invocations := 0
	err := s.RunAttempt(context.Background(), func(ctx context.Context, att storage.Attempt) error {
		invocations++
		_, err := att.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		// Every pass loses the race.
		competing := s.RunAttempt(ctx, func(ctx context.Context, att storage.Attempt) error {
			inner, err := att.GetAccount(ctx, accountID)
			if err != nil {
				return err
			}
			return att.UpdateAccountBalance(ctx, accountID, inner.Balance.Add(decimal.RequireFromString("1")))
		})
		if competing != nil {
			return competing
		}

		return att.UpdateAccountBalance(ctx, accountID, decimal.Zero)
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Equal(t, 3, invocations, "initial attempt plus two retries")
}

func TestRunAttempt_AbsentReadConflictsWithCreate(t *testing.T) {
	s := New(0)
	recordID := uuid.Must(uuid.NewV4())

	// Read-nothing is still a read: a concurrent create of the same
	// record invalidates the attempt.
	invocations := 0
	var seen []bool
	err := s.RunAttempt(context.Background(), func(ctx context.Context, att storage.Attempt) error {
		invocations++
		_, err := att.GetTransaction(ctx, recordID)
		seen = append(seen, err == nil)
		if invocations == 1 {
			s.PutTransaction(&storage.Transaction{ID: recordID, LinkID: recordID})
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, invocations)
	assert.Equal(t, []bool{false, true}, seen)
}

func TestTransactionsByAccount_FilterAndOrder(t *testing.T) {
	s := New(0)
	accountID := uuid.Must(uuid.NewV4())
	otherID := uuid.Must(uuid.NewV4())

	for i := 0; i < 3; i++ {
		id := uuid.Must(uuid.NewV4())
		require.NoError(t, s.RunAttempt(context.Background(), func(ctx context.Context, att storage.Attempt) error {
			return att.CreateTransaction(ctx, &storage.TransactionCreate{
				ID:        id,
				AccountID: accountID,
				Amount:    decimal.RequireFromString("5"),
				Kind:      storage.KindIncome,
				LinkID:    id,
			})
		}))
	}
	s.PutTransaction(&storage.Transaction{ID: uuid.Must(uuid.NewV4()), AccountID: otherID})

	records, err := s.TransactionsByAccount(context.Background(), &storage.TransactionFilter{AccountID: &accountID})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, accountID, record.AccountID)
	}
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i-1].RecordedAt.Before(records[i].RecordedAt), "newest first")
	}

	limited, err := s.TransactionsByAccount(context.Background(), &storage.TransactionFilter{AccountID: &accountID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 2, "limit+1 rows for next-page detection")
}

func TestTransactionsByLink(t *testing.T) {
	s := New(0)
	linkID := uuid.Must(uuid.NewV4())
	otherLink := uuid.Must(uuid.NewV4())

	s.PutTransaction(&storage.Transaction{ID: linkID, LinkID: linkID})
	s.PutTransaction(&storage.Transaction{ID: uuid.Must(uuid.NewV4()), LinkID: linkID})
	s.PutTransaction(&storage.Transaction{ID: otherLink, LinkID: otherLink})

	linked, err := s.TransactionsByLink(context.Background(), linkID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
}
