package transfer

import (
	"errors"

	"github.com/vultisig/xpay/internal/allowance"
	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/price"
)

var (
	ErrNoSourceChain       = errors.New("Select a source chain")
	ErrNoSourceAsset       = errors.New("Select an asset")
	ErrNoBalance           = errors.New("Token amounts unavailable")
	ErrSourceDisabled      = errors.New("Transfers from this chain are disabled")
	ErrMigrationAsset      = errors.New("This asset must be migrated before it can be transferred")
	ErrInvalidAmount       = errors.New("Amount must be greater than zero")
	ErrInsufficientBalance = errors.New("The amount may not be greater than the balance")

	ErrNoTargetChain      = errors.New("Select a target chain")
	ErrSameChain          = errors.New("Source chain and target chain must differ")
	ErrTargetDisabled     = errors.New("Transfers to this chain are disabled")
	ErrNoTargetAddress    = errors.New("Target account unavailable")
	ErrTargetAssetPending = errors.New("Resolving target asset")
	ErrTargetAssetFailed  = errors.New("Target asset unavailable")

	ErrWrongWallet           = errors.New("A different wallet is connected than in Step 1.")
	ErrWalletNotConnected    = errors.New("Wallet is not connected")
	ErrQuoteUnavailable      = errors.New("Price quote unavailable")
	ErrAllowanceInsufficient = errors.New("Token allowance is insufficient")
	ErrInFlight              = errors.New("An operation is already in progress")
	ErrAlreadySubmitted      = errors.New("Transfer already submitted")
)

// SourceError returns the first reason the source step is incomplete.
func SourceError(st *State, chains chain.ConfigMap) error {
	if st.SourceChain == 0 {
		return ErrNoSourceChain
	}
	if st.SourceAsset == nil {
		return ErrNoSourceAsset
	}
	parsed, ok := st.SourceParsedAccount.Value()
	if !ok || parsed.BalanceRaw == nil {
		return ErrNoBalance
	}
	if chains.IsTransferDisabled(st.SourceChain, true) {
		return ErrSourceDisabled
	}
	if isMigrationAsset(st, parsed, chains) {
		return ErrMigrationAsset
	}
	if _, err := price.ParseFiat(st.RequestedFiatAmount); err != nil {
		return ErrInvalidAmount
	}
	if amount, ok := st.ActualAmount(); ok && amount.Cmp(parsed.BalanceRaw) > 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func IsSourceComplete(st *State, chains chain.ConfigMap) bool {
	return SourceError(st, chains) == nil
}

func isMigrationAsset(st *State, parsed ParsedAccount, chains chain.ConfigMap) bool {
	if _, ok := chains.MigrationTarget(st.SourceChain, parsed.MintKey); ok {
		return true
	}
	_, ok := chains.MigrationTarget(st.SourceChain, st.SourceAsset.Address)
	return ok
}

// TargetError returns the first reason the target step is incomplete.
func TargetError(st *State, chains chain.ConfigMap, registry RegistryChecker) error {
	if st.TargetChain == 0 {
		return ErrNoTargetChain
	}
	if st.TargetChain == st.SourceChain {
		return ErrSameChain
	}
	if chains.IsTransferDisabled(st.TargetChain, false) {
		return ErrTargetDisabled
	}
	if st.TargetAddressHex == "" {
		return ErrNoTargetAddress
	}
	if registry != nil && registry.HasRegistry(st.TargetChain) {
		switch {
		case st.TargetAsset.IsFetching():
			return ErrTargetAssetPending
		case st.TargetAsset.IsFailed():
			return ErrTargetAssetFailed
		}
	}
	return nil
}

func IsTargetComplete(st *State, chains chain.ConfigMap, registry RegistryChecker) bool {
	return TargetError(st, chains, registry) == nil
}

// IsWrongWallet is true when the wallet connected on the source chain is not
// the one recorded during the source step.
func IsWrongWallet(st *State, wallet Wallet) bool {
	if st.SourceWalletAddress == "" || wallet == nil {
		return false
	}
	connected, ok := wallet.ConnectedAddress(st.SourceChain)
	return ok && connected != st.SourceWalletAddress
}

// SendError returns the first reason the transfer cannot be submitted. The
// wallet check comes first and does not depend on any other input.
func SendError(st *State, chains chain.ConfigMap, registry RegistryChecker, wallet Wallet) error {
	if IsWrongWallet(st, wallet) {
		return ErrWrongWallet
	}
	if st.TransferTx != nil {
		return ErrAlreadySubmitted
	}
	if st.IsSending || st.Allowance.IsApproving || st.Allowance.IsFetching {
		return ErrInFlight
	}
	if err := SourceError(st, chains); err != nil {
		return err
	}
	if err := TargetError(st, chains, registry); err != nil {
		return err
	}
	if wallet == nil {
		return ErrWalletNotConnected
	}
	if _, ok := wallet.ConnectedAddress(st.SourceChain); !ok {
		return ErrWalletNotConnected
	}
	if _, ok := st.ActualAmount(); !ok {
		return ErrQuoteUnavailable
	}
	if allowance.RequiredFor(st) && !st.Allowance.Sufficient {
		return ErrAllowanceInsufficient
	}
	return nil
}
