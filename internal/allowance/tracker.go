// Package allowance keeps the ERC-20 spending allowance granted to the token
// bridge in sync with the transfer inputs and drives token approvals.
package allowance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/metrics"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/resource"
)

const (
	ErrCheckFailed   = "Unable to check token allowance"
	ErrApproveFailed = "Failed to approve the token transfer."
)

// Reader reads the allowance owner granted to the source chain's token bridge.
type Reader interface {
	Allowance(ctx context.Context, id chain.ID, owner, asset string) (*big.Int, error)
}

// Approver grants the source chain's token bridge an allowance of amount.
type Approver interface {
	Approve(ctx context.Context, id chain.ID, owner, asset string, amount *big.Int) error
}

// Key is the tuple an allowance reading is valid for.
type Key struct {
	Chain  chain.ID
	Asset  string
	Owner  string
	Amount string
}

// Required reports whether a transfer of the parsed account's asset on id
// needs a prior approval: only non-native assets on EVM chains do.
func Required(id chain.ID, parsed model.ParsedAccount) bool {
	return id.IsEVM() && !parsed.IsNativeAsset
}

// RequiredFor is Required applied to the source side of st. It is false while
// the source account is not parsed yet.
func RequiredFor(st *model.TransferState) bool {
	parsed, ok := st.SourceParsedAccount.Value()
	if !ok || st.SourceAsset == nil {
		return false
	}
	return Required(st.SourceChain, parsed)
}

// KeyOf derives the allowance key from st. ok is false when an input is
// still missing.
func KeyOf(st *model.TransferState) (Key, bool) {
	if st.SourceAsset == nil || st.SourceWalletAddress == "" {
		return Key{}, false
	}
	amount, ok := st.ActualTokenAmount.Value()
	if !ok || amount == "" {
		return Key{}, false
	}
	return Key{
		Chain:  st.SourceChain,
		Asset:  st.SourceAsset.Address,
		Owner:  st.SourceWalletAddress,
		Amount: amount,
	}, true
}

// Tracker must only be used from the event loop goroutine.
type Tracker struct {
	loop     *loop.Loop
	reader   Reader
	approver Approver
	logger   *logrus.Logger
	metrics  *metrics.TransferMetrics

	checks    resource.Guard[Key]
	approvals resource.Guard[Key]
	memo      resource.Memo[Key]
}

func NewTracker(l *loop.Loop, reader Reader, approver Approver, m *metrics.TransferMetrics, logger *logrus.Logger) *Tracker {
	return &Tracker{
		loop:     l,
		reader:   reader,
		approver: approver,
		logger:   logger,
		metrics:  m,
	}
}

// Sync recomputes st.Allowance. An unchanged key with a successful reading
// never issues another chain read.
func (t *Tracker) Sync(ctx context.Context, st *model.TransferState) {
	if !RequiredFor(st) {
		t.checks.Invalidate()
		t.memo.Clear()
		st.Allowance.Sufficient = false
		st.Allowance.IsFetching = false
		st.Allowance.Error = ""
		return
	}

	key, ok := KeyOf(st)
	if !ok {
		t.checks.Invalidate()
		t.memo.Clear()
		st.Allowance.Sufficient = false
		st.Allowance.IsFetching = false
		return
	}
	if t.memo.Matches(key) {
		t.metrics.RecordMemoHit("allowance", key.Chain.String())
		return
	}

	amount, ok := new(big.Int).SetString(key.Amount, 10)
	if !ok {
		st.Allowance.Sufficient = false
		st.Allowance.IsFetching = false
		return
	}

	ticket := t.checks.Issue(key)
	st.Allowance.IsFetching = true
	st.Allowance.Error = ""

	loop.Async(ctx, t.loop, func(ctx context.Context) (*big.Int, error) {
		return t.reader.Allowance(ctx, key.Chain, key.Owner, key.Asset)
	}, func(allowance *big.Int, err error) {
		if !ticket.Current() {
			t.metrics.RecordStaleDiscard("allowance")
			return
		}
		st.Allowance.IsFetching = false
		t.metrics.RecordLookup("allowance", key.Chain.String(), err == nil)
		if err != nil {
			t.logger.WithError(err).WithFields(logrus.Fields{
				"chain": key.Chain.String(),
				"asset": key.Asset,
				"owner": key.Owner,
			}).Error("failed to read token allowance")
			st.Allowance.Sufficient = false
			st.Allowance.Error = ErrCheckFailed
			return
		}
		st.Allowance.Sufficient = allowance.Cmp(amount) >= 0
		t.memo.Record(key)
	})
}

// Approve grants the bridge either the quoted amount or 2^256-1 when
// unlimited is set. The allowance is re-read once the approval is mined.
func (t *Tracker) Approve(ctx context.Context, st *model.TransferState, unlimited bool) {
	if st.Allowance.IsApproving || !RequiredFor(st) {
		return
	}
	key, ok := KeyOf(st)
	if !ok {
		return
	}
	amount, ok := new(big.Int).SetString(key.Amount, 10)
	if !ok {
		return
	}
	if unlimited {
		amount = new(big.Int).Set(math.MaxBig256)
	}

	ticket := t.approvals.Issue(key)
	st.Allowance.IsApproving = true
	st.Allowance.Error = ""

	loop.Async(ctx, t.loop, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.approver.Approve(ctx, key.Chain, key.Owner, key.Asset, amount)
	}, func(_ struct{}, err error) {
		if !ticket.Current() {
			t.metrics.RecordStaleDiscard("approval")
			return
		}
		st.Allowance.IsApproving = false
		t.metrics.RecordApproval(key.Chain.String(), unlimited, err == nil)
		if err != nil {
			t.logger.WithError(err).WithFields(logrus.Fields{
				"chain":     key.Chain.String(),
				"asset":     key.Asset,
				"unlimited": unlimited,
			}).Error("token approval failed")
			st.Allowance.Error = ErrApproveFailed
			return
		}
		t.memo.Clear()
		t.Sync(ctx, st)
	})
}

// Reset drops every outstanding request and the memoized reading.
func (t *Tracker) Reset() {
	t.checks.Invalidate()
	t.approvals.Invalidate()
	t.memo.Clear()
}
