// Package target resolves the representation of the source asset on the
// selected target chain.
package target

import (
	"context"
	"strings"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/metrics"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/resource"
)

const ErrLookupFailed = "Unable to determine existence of wrapped asset"

// Registry looks up wrapped assets in a target chain's token bridge.
type Registry interface {
	HasRegistry(id chain.ID) bool
	WrappedAsset(ctx context.Context, target, originChain chain.ID, originAssetHex string) (string, error)
}

type Key struct {
	IsWrapped   bool
	OriginChain chain.ID
	OriginAsset string
	TargetChain chain.ID
}

func KeyOf(st *model.TransferState) (Key, bool) {
	if st.SourceAsset == nil || st.TargetChain == 0 {
		return Key{}, false
	}
	return Key{
		IsWrapped:   st.SourceAsset.IsWrapped,
		OriginChain: st.SourceAsset.OriginChain,
		OriginAsset: strings.ToLower(strings.TrimPrefix(st.SourceAsset.OriginAddressHex, "0x")),
		TargetChain: st.TargetChain,
	}, true
}

// Resolver must only be used from the event loop goroutine.
type Resolver struct {
	loop     *loop.Loop
	registry Registry
	logger   *logrus.Logger
	metrics  *metrics.TransferMetrics

	guard resource.Guard[Key]
	memo  resource.Memo[Key]
}

func NewResolver(l *loop.Loop, registry Registry, m *metrics.TransferMetrics, logger *logrus.Logger) *Resolver {
	return &Resolver{
		loop:     l,
		registry: registry,
		logger:   logger,
		metrics:  m,
	}
}

// Sync updates st.TargetAsset for the current source asset and target chain.
func (r *Resolver) Sync(ctx context.Context, st *model.TransferState) {
	key, ok := KeyOf(st)
	if !ok {
		r.guard.Invalidate()
		st.TargetAsset = resource.Idle[model.TargetAsset]()
		return
	}

	// bridging a wrapped asset home releases the original token
	if key.IsWrapped && key.OriginChain == key.TargetChain {
		r.guard.Invalidate()
		r.memo.Record(key)
		st.TargetAsset = resource.Ready(model.TargetAsset{
			Exists:  true,
			Address: nativeAddress(key.OriginChain, key.OriginAsset),
		})
		return
	}

	if !key.TargetChain.IsEVM() || !r.registry.HasRegistry(key.TargetChain) {
		r.guard.Invalidate()
		st.TargetAsset = resource.Idle[model.TargetAsset]()
		return
	}

	if r.memo.Matches(key) && st.TargetAsset.IsReady() {
		r.metrics.RecordMemoHit("wrapped_asset", key.TargetChain.String())
		return
	}

	ticket := r.guard.Issue(key)
	st.TargetAsset = resource.Fetching[model.TargetAsset]()

	loop.Async(ctx, r.loop, func(ctx context.Context) (string, error) {
		return r.registry.WrappedAsset(ctx, key.TargetChain, key.OriginChain, key.OriginAsset)
	}, func(addr string, err error) {
		if !ticket.Current() {
			r.metrics.RecordStaleDiscard("wrapped_asset")
			return
		}
		r.metrics.RecordLookup("wrapped_asset", key.TargetChain.String(), err == nil)
		if err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"target_chain": key.TargetChain.String(),
				"origin_chain": key.OriginChain.String(),
				"origin_asset": key.OriginAsset,
			}).Error("wrapped asset lookup failed")
			r.memo.Clear()
			st.TargetAsset = resource.Failed[model.TargetAsset](ErrLookupFailed)
			return
		}
		r.memo.Record(key)
		st.TargetAsset = resource.Ready(model.TargetAsset{
			Exists:  ecommon.HexToAddress(addr) != (ecommon.Address{}),
			Address: addr,
		})
	})
}

func (r *Resolver) Reset() {
	r.guard.Invalidate()
	r.memo.Clear()
}

func nativeAddress(id chain.ID, hexAddr string) string {
	f, err := chain.FamilyOf(id)
	if err != nil {
		return hexAddr
	}
	native, err := f.Native(hexAddr)
	if err != nil {
		return hexAddr
	}
	return native
}
