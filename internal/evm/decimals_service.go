package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type decimalsService struct {
	rpc Client
}

func newDecimalsService(rpc Client) *decimalsService {
	return &decimalsService{
		rpc: rpc,
	}
}

// GetDecimals fetches the decimals for an ERC20 token
func (d *decimalsService) GetDecimals(ctx context.Context, tokenAddress common.Address) (uint8, error) {
	if tokenAddress == ZeroAddress {
		return 0, fmt.Errorf("token address cannot be zero")
	}

	decimals, err := callReadonly[uint8](ctx, d.rpc, erc20ABI, tokenAddress, "decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to get decimals for token %s: %w", tokenAddress.Hex(), err)
	}
	return decimals, nil
}
