// Package transfer implements the token transfer session: a step machine
// over the shared transfer state whose inputs are completed by asynchronous
// chain reads, a price quote and wallet events.
package transfer

import (
	"context"

	"github.com/vultisig/xpay/internal/audit"
	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
)

type (
	State          = model.TransferState
	Step           = model.Step
	Asset          = model.Asset
	ParsedAccount  = model.ParsedAccount
	TargetAsset    = model.TargetAsset
	AllowanceState = model.AllowanceState
	Transaction    = model.Transaction
	Request        = model.Request
)

const (
	StepSource   = model.StepSource
	StepTarget   = model.StepTarget
	StepSend     = model.StepSend
	StepComplete = model.StepComplete
)

// Submitter sends the bridge transfer from the source chain.
type Submitter interface {
	SubmitTransfer(ctx context.Context, req Request) (*Transaction, error)
}

// Auditor records created transfers. It must not block for long and never
// reports failures back.
type Auditor interface {
	RecordTransferCreated(ctx context.Context, rec audit.Record)
}

// Watcher waits until the transfer's VAA is signed.
type Watcher interface {
	WaitSigned(ctx context.Context, tx *Transaction) ([]byte, error)
}

type AccountReader interface {
	ParsedAccount(ctx context.Context, id chain.ID, owner, asset string) (ParsedAccount, error)
}

// RegistryChecker reports which target chains resolve wrapped assets.
type RegistryChecker interface {
	HasRegistry(id chain.ID) bool
}

type Wallet interface {
	ConnectedAddress(id chain.ID) (string, bool)
}
