package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage"
)

const defaultLimit = 20

// TransactionService handles read-only transaction listings.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// ListTransactions returns a page of an account's transactions using
// cursor-based pagination.
func (s *TransactionService) ListTransactions(ctx context.Context, accountID uuid.UUID, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	limit := defaultLimit
	offset := 0
	var maxRecordedAt *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxRecordedAt = &cursor.MaxRecordedAt
	}

	filter := &storage.TransactionFilter{
		AccountID:     &accountID,
		Limit:         limit,
		Offset:        offset,
		MaxRecordedAt: maxRecordedAt,
	}

	rows, err := s.store.TransactionsByAccount(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]

		cursorMaxRecordedAt := rows[0].RecordedAt
		if maxRecordedAt != nil {
			cursorMaxRecordedAt = *maxRecordedAt
		}

		nextCursor = &TransactionCursor{
			Position:      offset + limit,
			Limit:         limit,
			MaxRecordedAt: cursorMaxRecordedAt,
		}
	}

	convertedTransactions := make([]Transaction, len(rows))
	for i, row := range rows {
		convertedTransactions[i] = Transaction{
			ID:               row.ID,
			AccountID:        row.AccountID,
			CounterpartyFrom: row.CounterpartyFrom,
			CounterpartyTo:   row.CounterpartyTo,
			Amount:           row.Amount,
			Description:      row.Description,
			Kind:             row.Kind.String(),
			RecordedAt:       row.RecordedAt,
			LinkID:           row.LinkID,
		}
	}

	return convertedTransactions, nextCursor, nil
}
