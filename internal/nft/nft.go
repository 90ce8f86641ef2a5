// Package nft holds the state of an NFT bridge transfer. It shares the
// destination address handling with token transfers.
package nft

import (
	"github.com/vultisig/xpay/internal/addresssync"
	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
)

type State struct {
	SourceChain      chain.ID           `json:"sourceChain"`
	OriginChain      chain.ID           `json:"originChain"`
	OriginAssetHex   string             `json:"originAssetHex"`
	TokenID          string             `json:"tokenId"`
	TargetChain      chain.ID           `json:"targetChain"`
	TargetAddressHex string             `json:"targetAddressHex"`
	TransferTx       *model.Transaction `json:"transferTx,omitempty"`
	IsSending        bool               `json:"isSending"`
	IsVAAPending     bool               `json:"isVaaPending"`
}

func (s *State) TargetChainID() chain.ID { return s.TargetChain }

func (s *State) CurrentTargetAddressHex() string { return s.TargetAddressHex }

func (s *State) SetTargetAddressHex(hexAddr string) { s.TargetAddressHex = hexAddr }

func (s *State) ShouldLockFields() bool {
	return s.IsSending || s.IsVAAPending || s.TransferTx != nil
}

// Transfer is the NFT aggregate. Like the token session it must only be
// touched from one goroutine.
type Transfer struct {
	state State
	sync  *addresssync.Synchronizer
}

func NewTransfer(sync *addresssync.Synchronizer) *Transfer {
	return &Transfer{sync: sync}
}

func (t *Transfer) State() State {
	return t.state
}

// SetTargetChain selects the destination chain and refreshes the address
// unless the transfer already started.
func (t *Transfer) SetTargetChain(id chain.ID) {
	if t.state.ShouldLockFields() {
		return
	}
	t.state.TargetChain = id
	t.Refresh()
}

func (t *Transfer) SetSource(sourceChain, originChain chain.ID, originAssetHex, tokenID string) {
	if t.state.ShouldLockFields() {
		return
	}
	t.state.SourceChain = sourceChain
	t.state.OriginChain = originChain
	t.state.OriginAssetHex = originAssetHex
	t.state.TokenID = tokenID
}

// Refresh re-runs address synchronization, e.g. after a wallet connects.
func (t *Transfer) Refresh() {
	t.sync.Sync(&t.state, !t.state.ShouldLockFields())
}

// ReadableTargetAddress renders the destination for display.
func (t *Transfer) ReadableTargetAddress() string {
	return t.sync.Readable(t.state.TargetChain, t.state.TargetAddressHex)
}

func (t *Transfer) Reset() {
	t.state = State{}
}
