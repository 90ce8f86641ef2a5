package evm

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type receiptWaiter struct {
	rpc      Client
	interval time.Duration
}

func newReceiptWaiter(rpc Client, interval time.Duration) *receiptWaiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &receiptWaiter{rpc: rpc, interval: interval}
}

func (w *receiptWaiter) WaitMined(ctx context.Context, txHash ecommon.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		receipt, err := w.rpc.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, ErrTxReverted
			}
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
