package evm

import (
	"context"
	"fmt"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/wallet"
)

type NetworkConfig struct {
	RPCURL    string
	Contracts Contracts
}

func NewNetwork(
	ctx context.Context,
	id chain.ID,
	cfg NetworkConfig,
	signer wallet.Signer,
) (*Network, error) {
	if !id.IsEVM() {
		return nil, fmt.Errorf("chain %s is not EVM", id)
	}

	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	return newNetwork(id, rpc, cfg.Contracts, signer, time.Second)
}

func newNetwork(
	id chain.ID,
	rpc Client,
	contracts Contracts,
	signer wallet.Signer,
	pollInterval time.Duration,
) (*Network, error) {
	if !ecommon.IsHexAddress(contracts.TokenBridge) {
		return nil, fmt.Errorf("invalid token bridge address for %s: %q", id, contracts.TokenBridge)
	}
	if !ecommon.IsHexAddress(contracts.CoreBridge) {
		return nil, fmt.Errorf("invalid core bridge address for %s: %q", id, contracts.CoreBridge)
	}

	tokenBridge := ecommon.HexToAddress(contracts.TokenBridge)
	coreBridge := ecommon.HexToAddress(contracts.CoreBridge)
	receipt := newReceiptWaiter(rpc, pollInterval)

	return &Network{
		Chain:       id,
		TokenBridge: tokenBridge,
		Approve:     newApproveService(rpc, id, signer, receipt),
		Balance:     newBalanceService(rpc),
		Decimals:    newDecimalsService(rpc),
		Registry:    newRegistryService(rpc, tokenBridge),
		Bridge:      newBridgeService(id, tokenBridge, coreBridge, signer, receipt),
	}, nil
}
