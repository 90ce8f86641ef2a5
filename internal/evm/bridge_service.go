package evm

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"math/rand/v2"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/wallet"
)

// bridgeService builds token bridge transfers, hands them to the wallet and
// extracts the core bridge message identity from the receipt.
type bridgeService struct {
	chain       chain.ID
	tokenBridge ecommon.Address
	coreBridge  ecommon.Address
	signer      wallet.Signer
	receipt     *receiptWaiter
	nonce       func() uint32
}

func newBridgeService(
	id chain.ID,
	tokenBridge, coreBridge ecommon.Address,
	signer wallet.Signer,
	receipt *receiptWaiter,
) *bridgeService {
	return &bridgeService{
		chain:       id,
		tokenBridge: tokenBridge,
		coreBridge:  coreBridge,
		signer:      signer,
		receipt:     receipt,
		nonce:       rand.Uint32,
	}
}

func (b *bridgeService) EmitterAddress() string {
	return hex.EncodeToString(ecommon.LeftPadBytes(b.tokenBridge.Bytes(), 32))
}

func (b *bridgeService) packTransfer(req model.Request) (data []byte, value *big.Int, err error) {
	recipient, err := toBytes32(req.TargetAddressHex)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid recipient: %w", err)
	}
	arbiterFee := big.NewInt(0)
	nonce := b.nonce()

	if req.IsNativeAsset {
		data, err = tokenBridgeABI.Pack("wrapAndTransferETH", uint16(req.TargetChain), recipient, arbiterFee, nonce)
		return data, req.Amount, err
	}

	if !ecommon.IsHexAddress(req.Asset) {
		return nil, nil, fmt.Errorf("invalid token address: %s", req.Asset)
	}
	data, err = tokenBridgeABI.Pack(
		"transferTokens",
		ecommon.HexToAddress(req.Asset),
		req.Amount,
		uint16(req.TargetChain),
		recipient,
		arbiterFee,
		nonce,
	)
	return data, big.NewInt(0), err
}

func (b *bridgeService) Transfer(ctx context.Context, req model.Request) (*model.Transaction, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}

	data, value, err := b.packTransfer(req)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}

	txHash, err := b.signer.SignAndSubmit(ctx, wallet.NewTxRequest(b.chain, req.Owner, b.tokenBridge.Hex(), data, value))
	if err != nil {
		return nil, fmt.Errorf("failed to submit transfer tx: %w", err)
	}

	receipt, err := b.receipt.WaitMined(ctx, ecommon.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("transfer tx %s: %w", txHash, err)
	}

	sequence, err := b.parseSequence(receipt)
	if err != nil {
		return nil, fmt.Errorf("transfer tx %s: %w", txHash, err)
	}

	return &model.Transaction{
		ID:             txHash,
		EmitterAddress: b.EmitterAddress(),
		Sequence:       fmt.Sprintf("%d", sequence),
		ChainID:        b.chain,
	}, nil
}

func (b *bridgeService) parseSequence(receipt *types.Receipt) (uint64, error) {
	event := coreBridgeABI.Events["LogMessagePublished"]
	sender := ecommon.BytesToHash(b.tokenBridge.Bytes())

	for _, log := range receipt.Logs {
		if log.Address != b.coreBridge || len(log.Topics) < 2 {
			continue
		}
		if log.Topics[0] != event.ID || log.Topics[1] != sender {
			continue
		}
		values, err := event.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return 0, fmt.Errorf("failed to unpack message event: %w", err)
		}
		sequence, ok := values[0].(uint64)
		if !ok {
			return 0, fmt.Errorf("unexpected sequence type %T", values[0])
		}
		return sequence, nil
	}
	return 0, fmt.Errorf("no LogMessagePublished event from token bridge")
}

func toBytes32(hexAddr string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(trim0x(hexAddr))
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
