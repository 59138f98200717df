package config

import (
	"os"
	"strconv"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	StoreBackend      string
	PostgresAddress   string
	PostgresPort      string
	PostgresDB        string
	PostgresUsername  string
	PostgresPassword  string
	OperatorWorkers   int
	MaxAttemptRetries uint64
}

func ProcessEnvironmentVariables() (*Config, error) {
	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		StoreBackend:      StoreBackendMemory,
		PostgresAddress:   "localhost",
		PostgresPort:      "5433",
		PostgresDB:        "postgres",
		PostgresUsername:  "postgres",
		PostgresPassword:  "testpassword",
		OperatorWorkers:   4,
		MaxAttemptRetries: 8,
	}

	envStoreBackend := os.Getenv("STORE_BACKEND")
	envPostgresAddress := os.Getenv("POSTGRES_ADDRESS")
	envPostgresPort := os.Getenv("POSTGRES_PORT")
	envPostgresDB := os.Getenv("POSTGRES_DB")
	envPostgresUsername := os.Getenv("POSTGRES_USERNAME")
	envPostgresPassword := os.Getenv("POSTGRES_PASSWORD")
	envOperatorWorkers := os.Getenv("OPERATOR_WORKERS")
	envMaxAttemptRetries := os.Getenv("MAX_ATTEMPT_RETRIES")

	if len(envStoreBackend) != 0 {
		env.StoreBackend = envStoreBackend
	}

	if len(envPostgresAddress) != 0 {
		env.PostgresAddress = envPostgresAddress
	}

	if len(envPostgresPort) != 0 {
		env.PostgresPort = envPostgresPort
	}

	if len(envPostgresDB) != 0 {
		env.PostgresDB = envPostgresDB
	}

	if len(envPostgresUsername) != 0 {
		env.PostgresUsername = envPostgresUsername
	}

	if len(envPostgresPassword) != 0 {
		env.PostgresPassword = envPostgresPassword
	}

	if len(envOperatorWorkers) != 0 {
		workers, err := strconv.Atoi(envOperatorWorkers)
		if err != nil {
			return nil, err
		}
		env.OperatorWorkers = workers
	}

	if len(envMaxAttemptRetries) != 0 {
		retries, err := strconv.ParseUint(envMaxAttemptRetries, 10, 64)
		if err != nil {
			return nil, err
		}
		env.MaxAttemptRetries = retries
	}

	return &env, nil
}
