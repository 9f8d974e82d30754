package main

import (
	"time"

	"github.com/fastprodman/wagerpool/internal/config"
)

type apiConfig struct {
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	API             config.APIConfig
	Log             config.LogConfig
	Postgres        config.PostgresConfig
	Rent            config.RentConfig
	NATS            config.NATSConfig
}
