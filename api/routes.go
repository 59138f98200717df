package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/account"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transfer"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/service"
)

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Service  *service.Service
	Operator *operator.OperatorDelegator
}

func (r *Rest) Serve() {
	mux := http.NewServeMux()

	humaAPI := humago.New(mux, huma.DefaultConfig("ledger-server", "1.0.0"))
	humaAPI.UseMiddleware(logging.Middleware(r.Logger))

	transfer.NewTransferHandler(r.Operator).Register(humaAPI)
	transaction.NewDeleteTransactionHandler(r.Operator).Register(humaAPI)
	transaction.NewListTransactionsHandler(r.Service.Transaction).Register(humaAPI)
	account.NewGetAccountHandler(r.Service.Account).Register(humaAPI)

	statusHandler := status.NewHandler()
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           mux,
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
