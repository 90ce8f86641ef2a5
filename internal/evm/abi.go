package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client is the subset of *ethclient.Client the services depend on.
type Client interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account ecommon.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash ecommon.Hash) (*types.Receipt, error)
}

var ZeroAddress = ecommon.Address{}

const erc20JSON = `[
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

const tokenBridgeJSON = `[
{"type":"function","name":"wrappedAsset","stateMutability":"view","inputs":[{"name":"tokenChainId","type":"uint16"},{"name":"tokenAddress","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"transferTokens","stateMutability":"payable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"recipientChain","type":"uint16"},{"name":"recipient","type":"bytes32"},{"name":"arbiterFee","type":"uint256"},{"name":"nonce","type":"uint32"}],"outputs":[{"name":"sequence","type":"uint64"}]},
{"type":"function","name":"wrapAndTransferETH","stateMutability":"payable","inputs":[{"name":"recipientChain","type":"uint16"},{"name":"recipient","type":"bytes32"},{"name":"arbiterFee","type":"uint256"},{"name":"nonce","type":"uint32"}],"outputs":[{"name":"sequence","type":"uint64"}]}
]`

const coreBridgeJSON = `[
{"type":"event","name":"LogMessagePublished","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"sequence","type":"uint64","indexed":false},{"name":"nonce","type":"uint32","indexed":false},{"name":"payload","type":"bytes","indexed":false},{"name":"consistencyLevel","type":"uint8","indexed":false}]}
]`

var (
	erc20ABI       = mustParseABI(erc20JSON)
	tokenBridgeABI = mustParseABI(tokenBridgeJSON)
	coreBridgeABI  = mustParseABI(coreBridgeJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// callReadonly packs method args, performs an eth_call against to and
// unpacks the single return value.
func callReadonly[T any](
	ctx context.Context,
	rpc Client,
	contract abi.ABI,
	to ecommon.Address,
	method string,
	args ...any,
) (T, error) {
	var zero T

	data, err := contract.Pack(method, args...)
	if err != nil {
		return zero, err
	}

	out, err := rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return zero, err
	}

	values, err := contract.Unpack(method, out)
	if err != nil {
		return zero, err
	}
	if len(values) != 1 {
		return zero, errUnexpectedOutputs(method, len(values))
	}

	v, ok := values[0].(T)
	if !ok {
		return zero, fmt.Errorf("unexpected output type for %s: %T", method, values[0])
	}
	return v, nil
}
