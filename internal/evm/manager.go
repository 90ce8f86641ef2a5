package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/util"
)

type Network struct {
	Chain       chain.ID
	TokenBridge ecommon.Address
	Approve     *approveService
	Balance     *balanceService
	Decimals    *decimalsService
	Registry    *registryService
	Bridge      *bridgeService
}

// Manager routes chain reads and writes to the network of the right chain.
type Manager struct {
	network map[chain.ID]*Network
}

func NewManager(network map[chain.ID]*Network) *Manager {
	return &Manager{
		network: network,
	}
}

func (m *Manager) Get(id chain.ID) (*Network, error) {
	net, ok := m.network[id]
	if !ok {
		return nil, fmt.Errorf("failed to get network for chain: %s", id)
	}
	return net, nil
}

// HasRegistry reports whether wrapped assets on id can be looked up.
func (m *Manager) HasRegistry(id chain.ID) bool {
	_, ok := m.network[id]
	return ok
}

func (m *Manager) WrappedAsset(ctx context.Context, target, originChain chain.ID, originAssetHex string) (string, error) {
	net, err := m.Get(target)
	if err != nil {
		return "", err
	}
	originAsset, err := toBytes32(originAssetHex)
	if err != nil {
		return "", fmt.Errorf("invalid origin asset: %w", err)
	}
	addr, err := net.Registry.WrappedAsset(ctx, uint16(originChain), originAsset)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

func (m *Manager) Allowance(ctx context.Context, id chain.ID, owner, asset string) (*big.Int, error) {
	net, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return net.Approve.GetAllowance(ctx, ecommon.HexToAddress(asset), ecommon.HexToAddress(owner), net.TokenBridge)
}

func (m *Manager) Approve(ctx context.Context, id chain.ID, owner, asset string, amount *big.Int) error {
	net, err := m.Get(id)
	if err != nil {
		return err
	}
	_, err = net.Approve.Approve(ctx, ecommon.HexToAddress(asset), ecommon.HexToAddress(owner), net.TokenBridge, amount)
	return err
}

// ParsedAccount reads the owner's balance and the asset's decimals. An empty
// or zero asset address denotes the chain's native token.
func (m *Manager) ParsedAccount(ctx context.Context, id chain.ID, owner, asset string) (model.ParsedAccount, error) {
	net, err := m.Get(id)
	if err != nil {
		return model.ParsedAccount{}, err
	}

	ownerAddr := ecommon.HexToAddress(owner)
	tokenAddr := ecommon.HexToAddress(asset)
	if util.IsNativeToken(asset) || tokenAddr == ZeroAddress {
		info, _ := chain.Lookup(id)
		balance, err := net.Balance.GetNativeBalance(ctx, ownerAddr)
		if err != nil {
			return model.ParsedAccount{}, err
		}
		return model.ParsedAccount{
			Owner:         owner,
			MintKey:       ZeroAddress.Hex(),
			Decimals:      info.NativeDecimals,
			IsNativeAsset: true,
			BalanceRaw:    balance,
		}, nil
	}

	decimals, err := net.Decimals.GetDecimals(ctx, tokenAddr)
	if err != nil {
		return model.ParsedAccount{}, err
	}
	balance, err := net.Balance.GetERC20Balance(ctx, tokenAddr, ownerAddr)
	if err != nil {
		return model.ParsedAccount{}, err
	}
	return model.ParsedAccount{
		Owner:      owner,
		MintKey:    tokenAddr.Hex(),
		Decimals:   decimals,
		BalanceRaw: balance,
	}, nil
}

func (m *Manager) SubmitTransfer(ctx context.Context, req model.Request) (*model.Transaction, error) {
	net, err := m.Get(req.SourceChain)
	if err != nil {
		return nil, err
	}
	return net.Bridge.Transfer(ctx, req)
}
