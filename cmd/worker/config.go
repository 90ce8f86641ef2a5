package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/vultisig/xpay/internal/logging"
	"github.com/vultisig/xpay/internal/metrics"
)

type config struct {
	LogFormat   logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`
	Concurrency int               `envconfig:"WORKER_CONCURRENCY" default:"10"`
	Postgres    postgresConfig
	Redis       redisConfig
	Metrics     metrics.Config
}

type postgresConfig struct {
	DSN string `required:"true"`
}

type redisConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"6379"`
	User     string
	Password string
	DB       int
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
