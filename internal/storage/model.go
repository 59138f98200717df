package storage

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Account represents a balance-holding account record. Accounts are
// provisioned by an external system; this server only reads them and
// adjusts their balances.
type Account struct {
	ID        uuid.UUID
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction represents one leg of a transfer. Records are immutable
// after creation; they are only ever removed, in pairs, by a reversal.
type Transaction struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	CounterpartyFrom string
	CounterpartyTo   string
	Amount           decimal.Decimal
	Description      string
	Kind             TransactionKind
	RecordedAt       time.Time
	LinkID           uuid.UUID
}

// TransactionCreate is the input for staging a new transaction record.
// The caller assigns the ID and LinkID; RecordedAt is assigned by the
// store at commit time, one value shared by every write in the attempt.
type TransactionCreate struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	CounterpartyFrom string
	CounterpartyTo   string
	Amount           decimal.Decimal
	Description      string
	Kind             TransactionKind
	LinkID           uuid.UUID
}

// TransactionFilter specifies filters for listing transactions.
type TransactionFilter struct {
	AccountID     *uuid.UUID
	Limit         int
	Offset        int
	MaxRecordedAt *time.Time
}

// TransactionKind distinguishes the debit leg from the credit leg.
type TransactionKind int8

const (
	KindExpense TransactionKind = iota
	KindIncome
)

func (k TransactionKind) String() string {
	switch k {
	case KindExpense:
		return "expense"
	case KindIncome:
		return "income"
	default:
		return "unknown"
	}
}
