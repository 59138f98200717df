package transaction

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

// DeleteTransactionInput is the Huma input for reversing a transaction.
type DeleteTransactionInput struct {
	TransactionID string `path:"transactionID" format:"uuid" doc:"UUID of either leg of the transfer"`
}

// DeleteTransactionOutput is the Huma output for reversing a transaction.
type DeleteTransactionOutput struct{}

// actionProcessor is the interface for dispatching actions to the operator pool.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// DeleteTransactionHandler handles DELETE /v1/transaction/{transactionID}.
type DeleteTransactionHandler struct {
	Operator actionProcessor
}

// NewDeleteTransactionHandler creates a new DeleteTransactionHandler.
func NewDeleteTransactionHandler(op actionProcessor) *DeleteTransactionHandler {
	return &DeleteTransactionHandler{Operator: op}
}

// Register registers the delete transaction endpoint with the Huma API.
func (h *DeleteTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-transaction",
		Method:        http.MethodDelete,
		Path:          "/v1/transaction/{transactionID}",
		Summary:       "Delete transaction",
		Description:   "Reverses a transfer: deletes both linked records and restores the account balances.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeleteTransactionHandler) handle(ctx context.Context, input *DeleteTransactionInput) (*DeleteTransactionOutput, error) {
	logData := logging.GetLogData(ctx)

	transactionID, err := uuid.FromString(input.TransactionID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid transactionID", err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("deleteTransactionMs")
	}
	err = h.Operator.Process(ctx, &actions.DeleteTransaction{TransactionID: transactionID})
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, mapDeleteTransactionError(err)
	}

	return &DeleteTransactionOutput{}, nil
}

func mapDeleteTransactionError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return huma.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrCorruptLink):
		return huma.NewError(http.StatusInternalServerError, "transaction link is corrupt, refusing to unwind", err)
	case errors.Is(err, ledger.ErrConflict):
		return huma.NewError(http.StatusConflict, "reversal abandoned after repeated write conflicts", err)
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return huma.NewError(http.StatusServiceUnavailable, "store unavailable", err)
	default:
		return huma.NewError(http.StatusInternalServerError, "failed to delete transaction", err)
	}
}
