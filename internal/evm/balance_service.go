package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"
)

type balanceService struct {
	rpc Client
}

func newBalanceService(rpc Client) *balanceService {
	return &balanceService{rpc: rpc}
}

func (s *balanceService) GetNativeBalance(ctx context.Context, address ecommon.Address) (*big.Int, error) {
	balance, err := s.rpc.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance: %w", err)
	}
	return balance, nil
}

func (s *balanceService) GetERC20Balance(ctx context.Context, tokenAddress, ownerAddress ecommon.Address) (*big.Int, error) {
	if tokenAddress == ZeroAddress {
		return s.GetNativeBalance(ctx, ownerAddress)
	}

	balance, err := callReadonly[*big.Int](ctx, s.rpc, erc20ABI, tokenAddress, "balanceOf", ownerAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get ERC20 balance: %w", err)
	}
	return balance, nil
}
