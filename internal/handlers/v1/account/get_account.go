package account

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// GetAccountInput is the Huma input for fetching an account.
type GetAccountInput struct {
	AccountID string `path:"accountID" format:"uuid" doc:"Account UUID"`
}

// GetAccountOutput is the Huma output for fetching an account.
type GetAccountOutput struct {
	Body Account
}

// accountGetter is the interface for fetching accounts.
type accountGetter interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*service.Account, error)
}

// GetAccountHandler handles GET /v1/account/{accountID}.
type GetAccountHandler struct {
	AccountService accountGetter
}

// NewGetAccountHandler creates a new GetAccountHandler.
func NewGetAccountHandler(svc accountGetter) *GetAccountHandler {
	return &GetAccountHandler{AccountService: svc}
}

// Register registers the get account endpoint with the Huma API.
func (h *GetAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/v1/account/{accountID}",
		Summary:     "Get account",
		Description: "Returns an account with its current balance.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *GetAccountHandler) handle(ctx context.Context, input *GetAccountInput) (*GetAccountOutput, error) {
	logData := logging.GetLogData(ctx)

	accountID, err := uuid.FromString(input.AccountID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid accountID", err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("getAccountMs")
	}
	row, err := h.AccountService.GetAccount(ctx, accountID)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, huma.NewError(http.StatusNotFound, "account not found")
		}
		return nil, huma.NewError(http.StatusInternalServerError, "failed to get account", err)
	}

	return &GetAccountOutput{
		Body: Account{
			ID:        row.ID.String(),
			Name:      row.Name,
			Balance:   row.Balance.String(),
			CreatedAt: row.CreatedAt.Format(time.RFC3339),
			UpdatedAt: row.UpdatedAt.Format(time.RFC3339),
		},
	}, nil
}
