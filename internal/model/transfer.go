package model

import (
	"math/big"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/resource"
)

type Step int

const (
	StepSource Step = iota
	StepTarget
	StepSend
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepSource:
		return "source"
	case StepTarget:
		return "target"
	case StepSend:
		return "send"
	case StepComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Asset identifies the token selected on the source chain together with its
// origin, which differs from the source chain for wrapped assets.
type Asset struct {
	Chain   chain.ID `json:"chain"`
	Address string   `json:"address"`
	// IsWrapped is true when Address is a bridge-minted representation.
	IsWrapped   bool     `json:"isWrapped"`
	OriginChain chain.ID `json:"originChain"`
	// OriginAddressHex is the 32-byte hex address on OriginChain.
	OriginAddressHex string `json:"originAddressHex"`
}

type ParsedAccount struct {
	Owner         string   `json:"owner"`
	MintKey       string   `json:"mintKey"`
	Decimals      uint8    `json:"decimals"`
	IsNativeAsset bool     `json:"isNativeAsset"`
	BalanceRaw    *big.Int `json:"balanceRaw"`
}

type TargetAsset struct {
	Exists  bool   `json:"exists"`
	Address string `json:"address"`
}

type AllowanceState struct {
	Sufficient  bool   `json:"sufficient"`
	IsFetching  bool   `json:"isFetching"`
	IsApproving bool   `json:"isApproving"`
	Error       string `json:"error,omitempty"`
}

// Transaction identifies a submitted transfer for attestation tracking. It is
// created once per successful submission and never modified.
type Transaction struct {
	ID             string   `json:"id"`
	EmitterAddress string   `json:"emitterAddress"`
	Sequence       string   `json:"sequence"`
	ChainID        chain.ID `json:"chainId"`
}

// Request is the transfer descriptor handed to the submitter.
type Request struct {
	SourceChain      chain.ID
	Owner            string
	Asset            string
	IsNativeAsset    bool
	Amount           *big.Int
	TargetChain      chain.ID
	TargetAddressHex string
}

// TransferState is the single owner of transfer-scoped data. Every component
// writes only its own fields; the zero value is the initial state.
type TransferState struct {
	Step Step

	SourceChain         chain.ID
	SourceAsset         *Asset
	SourceParsedAccount resource.Resource[ParsedAccount]
	SourceWalletAddress string
	RequestedFiatAmount string
	ActualTokenAmount   resource.Resource[string]

	TargetChain         chain.ID
	TargetAsset         resource.Resource[TargetAsset]
	TargetAddressHex    string
	TargetParsedAccount resource.Resource[ParsedAccount]

	Allowance AllowanceState

	TransferTx     *Transaction
	IsSending      bool
	IsVAAPending   bool
	IsSendComplete bool
	LastError      string

	MerchantID string
	OrderID    int64
}

// ShouldLockFields is true once a transfer has begun; inputs that could
// redirect funds must not change after that point.
func (s *TransferState) ShouldLockFields() bool {
	return s.IsSending || s.IsVAAPending || s.IsSendComplete || s.TransferTx != nil
}

// ActualAmount parses ActualTokenAmount. ok is false until a quote is ready.
func (s *TransferState) ActualAmount() (*big.Int, bool) {
	raw, ok := s.ActualTokenAmount.Value()
	if !ok {
		return nil, false
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, false
	}
	return amount, true
}

// Slice accessors used by the address synchronizer.

func (s *TransferState) TargetChainID() chain.ID { return s.TargetChain }

func (s *TransferState) CurrentTargetAddressHex() string { return s.TargetAddressHex }

func (s *TransferState) SetTargetAddressHex(hexAddr string) { s.TargetAddressHex = hexAddr }
