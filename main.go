package main

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/api"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memstore"
	"github.com/carson-networks/ledger-server/internal/storage/pgstore"
)

func main() {
	logger := logging.SetupLogging()
	logrus.Info("ledger-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	var store storage.Store
	switch envConfig.StoreBackend {
	case config.StoreBackendPostgres:
		pgStore, err := pgstore.Open(envConfig)
		if err != nil {
			logrus.WithError(err).Fatal("pgstore.Open")
			return
		}
		defer pgStore.Close()
		store = pgStore
	default:
		store = memstore.New(envConfig.MaxAttemptRetries)
	}
	logger.WithField("storeBackend", envConfig.StoreBackend).Info("store ready")

	ledgerEngine := ledger.New(store)
	svc := service.NewService(store)

	delegator := operator.NewOperatorDelegator(ledgerEngine, envConfig.OperatorWorkers)
	delegator.Start()
	defer delegator.Stop()

	wg := sync.WaitGroup{}
	wg.Add(1)

	go func() {
		httpRest := api.Rest{
			Logger:   logger,
			Port:     "9446",
			Service:  svc,
			Operator: delegator,
		}
		httpRest.Serve()
	}()

	wg.Wait()
}
