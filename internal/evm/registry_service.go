package evm

import (
	"context"
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
)

// registryService reads the token bridge's wrapped asset registry.
type registryService struct {
	rpc         Client
	tokenBridge ecommon.Address
}

func newRegistryService(rpc Client, tokenBridge ecommon.Address) *registryService {
	return &registryService{
		rpc:         rpc,
		tokenBridge: tokenBridge,
	}
}

// WrappedAsset returns the local address of the wrapped representation of
// originAsset, or the zero address when none has been deployed.
func (r *registryService) WrappedAsset(ctx context.Context, originChain uint16, originAsset [32]byte) (ecommon.Address, error) {
	addr, err := callReadonly[ecommon.Address](ctx, r.rpc, tokenBridgeABI, r.tokenBridge, "wrappedAsset", originChain, originAsset)
	if err != nil {
		return ZeroAddress, fmt.Errorf("failed to lookup wrapped asset: %w", err)
	}
	return addr, nil
}
