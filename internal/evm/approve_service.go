package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/wallet"
)

type approveService struct {
	rpc     Client
	chain   chain.ID
	signer  wallet.Signer
	receipt *receiptWaiter
}

func newApproveService(rpc Client, chain chain.ID, signer wallet.Signer, receipt *receiptWaiter) *approveService {
	return &approveService{
		rpc:     rpc,
		chain:   chain,
		signer:  signer,
		receipt: receipt,
	}
}

func (a *approveService) GetAllowance(
	ctx context.Context,
	tokenAddress, owner, spender ecommon.Address,
) (*big.Int, error) {
	allowance, err := callReadonly[*big.Int](ctx, a.rpc, erc20ABI, tokenAddress, "allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to check allowance: %w", err)
	}
	return allowance, nil
}

// Approve submits an ERC-20 approve for spender and waits until it is mined.
func (a *approveService) Approve(
	ctx context.Context,
	tokenAddress, owner, spender ecommon.Address,
	amount *big.Int,
) (string, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack approve: %w", err)
	}

	txHash, err := a.signer.SignAndSubmit(ctx, wallet.NewTxRequest(a.chain, owner.Hex(), tokenAddress.Hex(), data, nil))
	if err != nil {
		return "", fmt.Errorf("failed to submit approve tx: %w", err)
	}

	_, err = a.receipt.WaitMined(ctx, ecommon.HexToHash(txHash))
	if err != nil {
		return txHash, fmt.Errorf("approve tx %s: %w", txHash, err)
	}
	return txHash, nil
}
