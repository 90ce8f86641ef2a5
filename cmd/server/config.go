package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/vultisig/xpay/internal/api"
	"github.com/vultisig/xpay/internal/logging"
	"github.com/vultisig/xpay/internal/metrics"
)

type config struct {
	LogFormat       logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`
	ChainConfigPath string            `envconfig:"CHAIN_CONFIG_PATH"`
	LoopSize        int               `envconfig:"LOOP_SIZE" default:"256"`

	// Payees maps a target chain name to the merchant address, e.g.
	// TARGET_ADDRESS=Ethereum:0xabc...,Solana:9xQ...
	Payees map[string]string `envconfig:"TARGET_ADDRESS"`

	Server   api.Config
	Metrics  metrics.Config
	Redis    redisConfig
	Rpc      rpc
	Signer   signerConfig
	ZeroX    zeroXConfig
	Guardian guardianConfig
}

type redisConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"6379"`
	User     string
	Password string
	DB       int
}

type rpc struct {
	Ethereum  rpcItem
	BSC       rpcItem
	Polygon   rpcItem
	Avalanche rpcItem
}

type rpcItem struct {
	URL string
}

type signerConfig struct {
	URL string `required:"true"`
}

type zeroXConfig struct {
	BaseURL string  `default:"https://polygon.api.0x.org"`
	APIKey  string
	RPS     float64 `default:"2"`
}

type guardianConfig struct {
	URL          string `default:"https://api.wormholescan.io"`
	PollInterval string `default:"5s"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
