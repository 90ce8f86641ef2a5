package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vultisig/xpay/internal/api"
	"github.com/vultisig/xpay/internal/attest"
	"github.com/vultisig/xpay/internal/audit"
	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/evm"
	"github.com/vultisig/xpay/internal/graceful"
	"github.com/vultisig/xpay/internal/logging"
	"github.com/vultisig/xpay/internal/metrics"
	"github.com/vultisig/xpay/internal/transfer"
	"github.com/vultisig/xpay/internal/wallet"
	"github.com/vultisig/xpay/internal/zerox"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceHTTP, metrics.ServiceTransfer}, logger)

	chains, err := chain.LoadConfigMap(cfg.ChainConfigPath)
	if err != nil {
		logger.Fatalf("failed to load chain config: %v", err)
	}

	payees := make(map[chain.ID]string, len(cfg.Payees))
	for name, addr := range cfg.Payees {
		id, er := chain.Parse(name)
		if er != nil {
			logger.Fatalf("invalid TARGET_ADDRESS chain %q: %v", name, er)
		}
		payees[id] = addr
	}

	signer := wallet.NewRemoteSigner(cfg.Signer.URL)

	networks := make(map[chain.ID]*evm.Network)
	rpcURLs := map[chain.ID]string{
		chain.Ethereum:  cfg.Rpc.Ethereum.URL,
		chain.Bsc:       cfg.Rpc.BSC.URL,
		chain.Polygon:   cfg.Rpc.Polygon.URL,
		chain.Avalanche: cfg.Rpc.Avalanche.URL,
	}
	for _, id := range evm.SupportedEVMChains() {
		rpcURL := rpcURLs[id]
		if rpcURL == "" {
			logger.Warnf("no RPC configured for %s, skipping", id)
			continue
		}
		network, er := evm.NewNetwork(ctx, id, evm.NetworkConfig{
			RPCURL:    rpcURL,
			Contracts: evm.DefaultContracts[id],
		}, signer)
		if er != nil {
			logger.Fatalf("failed to initialize %s network: %v", id, er)
		}
		networks[id] = network
		logger.Infof("initialized %s network with RPC: %s", id, rpcURL)
	}
	evmManager := evm.NewManager(networks)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = asynqClient.Close()
	}()

	pollInterval, err := time.ParseDuration(cfg.Guardian.PollInterval)
	if err != nil {
		logger.Fatalf("invalid guardian poll interval: %v", err)
	}

	deps := transfer.Deps{
		Allowances: evmManager,
		Approver:   evmManager,
		Registry:   evmManager,
		Accounts:   evmManager,
		Quoter:     zerox.NewClient(cfg.ZeroX.BaseURL, cfg.ZeroX.APIKey, cfg.ZeroX.RPS),
		Submitter:  evmManager,
		Auditor:    audit.NewRecorder(asynqClient, logger),
		Watcher:    attest.NewWatcher(cfg.Guardian.URL, pollInterval, logger),
		Chains:     chains,
		Payees:     payees,
		Metrics:    metrics.NewTransferMetrics(),
	}

	sessions := api.NewSessions(ctx, deps, cfg.LoopSize, logger)
	srv := api.NewServer(cfg.Server, sessions, chains, logger)

	graceful.OnSignal(logger, cancel)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return srv.Start(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Infof("closed %d open sessions", sessions.CloseAll())

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := metricsServer.Stop(stopCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
		return nil
	})
	err = group.Wait()
	if err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
