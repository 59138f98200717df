package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Transaction represents a transaction record in the service layer.
type Transaction struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	CounterpartyFrom string
	CounterpartyTo   string
	Amount           decimal.Decimal
	Description      string
	Kind             string
	RecordedAt       time.Time
	LinkID           uuid.UUID
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxRecordedAt so subsequent pages are consistent.
type TransactionCursor struct {
	Position      int
	Limit         int
	MaxRecordedAt time.Time
}
