package transfer

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

// TransferBody is the request body for moving funds between accounts.
type TransferBody struct {
	SourceAccountID string `json:"sourceAccountID" required:"true" format:"uuid" doc:"Account the funds leave"`
	TargetAccountID string `json:"targetAccountID" required:"true" format:"uuid" doc:"Account the funds arrive at"`
	Amount          string `json:"amount" required:"true" doc:"Positive decimal amount to move"`
	Description     string `json:"description" required:"true" doc:"Description recorded on both legs"`
}

// TransferInput is the Huma input for a transfer.
type TransferInput struct {
	Body TransferBody
}

// TransferResponseBody is the response body for a successful transfer.
type TransferResponseBody struct {
	DebitID  string `json:"debitID" doc:"UUID of the debit record on the source account"`
	CreditID string `json:"creditID" doc:"UUID of the credit record on the target account"`
}

// TransferOutput is the Huma output for a transfer.
type TransferOutput struct {
	Body TransferResponseBody
}

// actionProcessor is the interface for dispatching actions to the operator pool.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// TransferHandler handles POST /v1/transfer.
type TransferHandler struct {
	Operator actionProcessor
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(op actionProcessor) *TransferHandler {
	return &TransferHandler{Operator: op}
}

// Register registers the transfer endpoint with the Huma API.
func (h *TransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "transfer",
		Method:        http.MethodPost,
		Path:          "/v1/transfer",
		Summary:       "Transfer funds",
		Description:   "Moves funds between two accounts as a linked debit/credit pair.",
		Tags:          []string{"Transfers"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

// parseTransferInput parses and validates the API input. Amount sign and
// description content are enforced by the ledger, not here.
func parseTransferInput(input *TransferInput) (sourceID, targetID uuid.UUID, amount decimal.Decimal, description string, err error) {
	sourceID, err = uuid.FromString(input.Body.SourceAccountID)
	if err != nil {
		err = huma.NewError(http.StatusBadRequest, "invalid sourceAccountID", err)
		return
	}
	targetID, err = uuid.FromString(input.Body.TargetAccountID)
	if err != nil {
		err = huma.NewError(http.StatusBadRequest, "invalid targetAccountID", err)
		return
	}
	amount, err = decimal.NewFromString(input.Body.Amount)
	if err != nil {
		err = huma.NewError(http.StatusBadRequest, "invalid amount", err)
		return
	}
	description = input.Body.Description
	return
}

func (h *TransferHandler) handle(ctx context.Context, input *TransferInput) (*TransferOutput, error) {
	logData := logging.GetLogData(ctx)

	sourceID, targetID, amount, description, err := parseTransferInput(input)
	if err != nil {
		return nil, err
	}

	action := &actions.TransferFunds{
		SourceAccountID: sourceID,
		TargetAccountID: targetID,
		Amount:          amount,
		Description:     description,
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("transferMs")
	}
	err = h.Operator.Process(ctx, action)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, mapTransferError(err)
	}

	if logData != nil {
		logData.AddData("debitID", action.DebitID.String())
		logData.AddData("creditID", action.CreditID.String())
	}

	return &TransferOutput{
		Body: TransferResponseBody{
			DebitID:  action.DebitID.String(),
			CreditID: action.CreditID.String(),
		},
	}, nil
}

func mapTransferError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrMissingDescription):
		return huma.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		return huma.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrConflict):
		return huma.NewError(http.StatusConflict, "transfer abandoned after repeated write conflicts", err)
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return huma.NewError(http.StatusServiceUnavailable, "store unavailable", err)
	default:
		return huma.NewError(http.StatusInternalServerError, "failed to transfer funds", err)
	}
}
