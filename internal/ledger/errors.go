package ledger

import (
	"errors"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// Errors surfaced by the executors. Precondition errors are returned
// before any store interaction; the rest classify attempt failures.
var (
	// ErrInvalidAmount is returned for a transfer amount that is not
	// strictly positive.
	ErrInvalidAmount = errors.New("ledger: transfer amount must be greater than zero")

	// ErrMissingDescription is returned when the transfer description
	// is empty after trimming whitespace.
	ErrMissingDescription = errors.New("ledger: transfer description is required")

	// ErrAccountNotFound is returned when the source or target account
	// does not exist. The wrapping message identifies the side.
	ErrAccountNotFound = errors.New("ledger: account not found")

	// ErrTransactionNotFound is returned when the reversal target does
	// not exist.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")

	// ErrCorruptLink is returned when more than one counterpart shares
	// a record's link id, which violates the pairing invariant.
	ErrCorruptLink = errors.New("ledger: transaction link is corrupt")

	// ErrConflict is returned when concurrent writers kept
	// invalidating the attempt past the store's retry budget.
	ErrConflict = errors.New("ledger: too many conflicting writes")

	// ErrStoreUnavailable is returned when the store cannot be reached.
	ErrStoreUnavailable = errors.New("ledger: store unavailable")
)

// translateStoreError maps store-level failures onto the executor
// taxonomy. Errors already in the taxonomy pass through untouched.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrConflict):
		return ErrConflict
	case errors.Is(err, storage.ErrUnavailable):
		return ErrStoreUnavailable
	default:
		return err
	}
}
