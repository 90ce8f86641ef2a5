package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/addresssync"
	"github.com/vultisig/xpay/internal/allowance"
	"github.com/vultisig/xpay/internal/audit"
	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/metrics"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/nft"
	"github.com/vultisig/xpay/internal/price"
	"github.com/vultisig/xpay/internal/resource"
	"github.com/vultisig/xpay/internal/target"
	"github.com/vultisig/xpay/internal/wallet"
)

var (
	ErrFieldsLocked       = errors.New("transfer already started")
	ErrUnknownChain       = errors.New("unknown chain")
	ErrStepIncomplete     = errors.New("current step is incomplete")
	ErrInvalidStep        = errors.New("invalid step")
	ErrApproveNotRequired = errors.New("approval not required")
)

// Deps are the capabilities a session runs against. evm.Manager provides
// the chain side for EVM source chains.
type Deps struct {
	Allowances allowance.Reader
	Approver   allowance.Approver
	Registry   target.Registry
	Accounts   AccountReader
	Quoter     price.Quoter
	Submitter  Submitter
	Auditor    Auditor
	Watcher    Watcher

	Chains chain.ConfigMap
	// Payees are merchant destination addresses per target chain.
	Payees  map[chain.ID]string
	Metrics *metrics.TransferMetrics
}

// Session is one transfer aggregate. All state lives on the event loop
// goroutine; exported methods hop onto it and return once the mutation and
// the effects it triggered have run.
type Session struct {
	id     string
	ctx    context.Context
	loop   *loop.Loop
	logger *logrus.Logger
	deps   Deps

	st        *State
	wallets   *wallet.Registry
	addresses *addresssync.Synchronizer
	allowance *allowance.Tracker
	target    *target.Resolver
	price     *price.Stage
	nft       *nft.Transfer
	reactor   *reactor

	sourceAccount resource.Guard[accountKey]
	targetAccount resource.Guard[accountKey]
	submission    resource.Guard[string]
	cancelWatch   context.CancelFunc
	submittedAt   time.Time
}

type accountKey struct {
	Chain chain.ID
	Owner string
	Asset string
}

// NewSession wires a session onto l and installs its reactor as l's after
// task hook. ctx bounds every asynchronous request the session starts.
func NewSession(ctx context.Context, l *loop.Loop, deps Deps, logger *logrus.Logger) *Session {
	if deps.Chains == nil {
		deps.Chains = chain.DefaultConfigMap()
	}
	wallets := wallet.NewRegistry()
	addresses := addresssync.NewSynchronizer(wallets, deps.Payees, logger)
	s := &Session{
		id:        uuid.NewString(),
		ctx:       ctx,
		loop:      l,
		logger:    logger,
		deps:      deps,
		st:        &State{},
		wallets:   wallets,
		addresses: addresses,
		allowance: allowance.NewTracker(l, deps.Allowances, deps.Approver, deps.Metrics, logger),
		target:    target.NewResolver(l, deps.Registry, deps.Metrics, logger),
		price:     price.NewStage(l, deps.Quoter, deps.Metrics, logger),
		nft:       nft.NewTransfer(addresses),
		reactor:   &reactor{logger: logger},
	}
	s.registerEffects()
	l.SetAfterTask(s.reactor.react)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) registerEffects() {
	r := s.reactor

	// the source wallet follows the connected wallet only during the source step
	type sourceWalletKey struct {
		Active    bool
		Chain     chain.ID
		Connected string
	}
	r.register("source_wallet", func() any {
		connected, _ := s.wallets.ConnectedAddress(s.st.SourceChain)
		return sourceWalletKey{s.st.Step == StepSource, s.st.SourceChain, connected}
	}, func() {
		if s.st.Step != StepSource {
			return
		}
		connected, _ := s.wallets.ConnectedAddress(s.st.SourceChain)
		s.st.SourceWalletAddress = connected
	})

	r.register("source_account", func() any {
		return s.sourceAccountKey()
	}, s.syncSourceAccount)

	type targetAddressKey struct {
		Chain     chain.ID
		Connected string
		Locked    bool
	}
	r.register("target_address", func() any {
		connected, _ := s.wallets.ConnectedAddress(s.st.TargetChain)
		return targetAddressKey{s.st.TargetChain, connected, s.st.ShouldLockFields()}
	}, func() {
		s.addresses.Sync(s.st, !s.st.ShouldLockFields())
	})

	type nftAddressKey struct {
		Chain     chain.ID
		Connected string
		Locked    bool
	}
	r.register("nft_target_address", func() any {
		st := s.nft.State()
		connected, _ := s.wallets.ConnectedAddress(st.TargetChain)
		return nftAddressKey{st.TargetChain, connected, st.ShouldLockFields()}
	}, s.nft.Refresh)

	type targetAssetKey struct {
		Key target.Key
		OK  bool
	}
	r.register("target_asset", func() any {
		k, ok := target.KeyOf(s.st)
		return targetAssetKey{k, ok}
	}, func() {
		s.target.Sync(s.ctx, s.st)
	})

	r.register("target_account", func() any {
		return s.targetAccountKey()
	}, s.syncTargetAccount)

	type priceKey struct {
		Key price.Key
		OK  bool
	}
	r.register("price", func() any {
		k, ok := price.KeyOf(s.st)
		return priceKey{k, ok}
	}, func() {
		s.price.Sync(s.ctx, s.st)
	})

	type allowanceKey struct {
		Key      allowance.Key
		OK       bool
		Required bool
	}
	r.register("allowance", func() any {
		k, ok := allowance.KeyOf(s.st)
		return allowanceKey{k, ok, allowance.RequiredFor(s.st)}
	}, func() {
		s.allowance.Sync(s.ctx, s.st)
	})
}

func (s *Session) sourceAccountKey() accountKey {
	if s.st.SourceChain == 0 || s.st.SourceAsset == nil || s.st.SourceWalletAddress == "" {
		return accountKey{}
	}
	return accountKey{Chain: s.st.SourceChain, Owner: s.st.SourceWalletAddress, Asset: s.st.SourceAsset.Address}
}

func (s *Session) syncSourceAccount() {
	key := s.sourceAccountKey()
	if key == (accountKey{}) || s.deps.Accounts == nil {
		s.sourceAccount.Invalidate()
		s.st.SourceParsedAccount = resource.Idle[ParsedAccount]()
		return
	}
	ticket := s.sourceAccount.Issue(key)
	s.st.SourceParsedAccount = resource.Fetching[ParsedAccount]()
	loop.Async(s.ctx, s.loop, func(ctx context.Context) (ParsedAccount, error) {
		return s.deps.Accounts.ParsedAccount(ctx, key.Chain, key.Owner, key.Asset)
	}, func(parsed ParsedAccount, err error) {
		if !ticket.Current() {
			s.deps.Metrics.RecordStaleDiscard("balance")
			return
		}
		s.deps.Metrics.RecordLookup("balance", key.Chain.String(), err == nil)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"session": s.id,
				"chain":   key.Chain.String(),
				"asset":   key.Asset,
			}).Error("failed to read source balance")
			s.st.SourceParsedAccount = resource.Failed[ParsedAccount](ErrNoBalance.Error())
			return
		}
		s.st.SourceParsedAccount = resource.Ready(parsed)
	})
}

// targetAccountKey identifies the destination's balance of the target asset.
// It is only read for chains with a registry.
func (s *Session) targetAccountKey() accountKey {
	asset, ok := s.st.TargetAsset.Value()
	if !ok || !asset.Exists || s.deps.Registry == nil || !s.deps.Registry.HasRegistry(s.st.TargetChain) {
		return accountKey{}
	}
	owner, ok := s.addresses.Destination(s.st.TargetChain)
	if !ok {
		return accountKey{}
	}
	return accountKey{Chain: s.st.TargetChain, Owner: owner, Asset: asset.Address}
}

func (s *Session) syncTargetAccount() {
	key := s.targetAccountKey()
	if key == (accountKey{}) || s.deps.Accounts == nil {
		s.targetAccount.Invalidate()
		s.st.TargetParsedAccount = resource.Idle[ParsedAccount]()
		return
	}
	ticket := s.targetAccount.Issue(key)
	s.st.TargetParsedAccount = resource.Fetching[ParsedAccount]()
	loop.Async(s.ctx, s.loop, func(ctx context.Context) (ParsedAccount, error) {
		return s.deps.Accounts.ParsedAccount(ctx, key.Chain, key.Owner, key.Asset)
	}, func(parsed ParsedAccount, err error) {
		if !ticket.Current() {
			return
		}
		if err != nil {
			s.logger.WithError(err).WithField("chain", key.Chain.String()).Warn("failed to read target balance")
			s.st.TargetParsedAccount = resource.Failed[ParsedAccount](ErrNoBalance.Error())
			return
		}
		s.st.TargetParsedAccount = resource.Ready(parsed)
	})
}

func (s *Session) do(ctx context.Context, fn func() error) error {
	var res error
	if err := s.loop.Call(ctx, func() { res = fn() }); err != nil {
		return err
	}
	return res
}

// unlocked runs fn unless a transfer has already begun.
func (s *Session) unlocked(ctx context.Context, fn func() error) error {
	return s.do(ctx, func() error {
		if s.st.ShouldLockFields() {
			return ErrFieldsLocked
		}
		return fn()
	})
}

// inStep runs fn while fields are unlocked and the session has not moved
// past step last.
func (s *Session) inStep(ctx context.Context, last Step, fn func() error) error {
	return s.unlocked(ctx, func() error {
		if s.st.Step > last {
			return fmt.Errorf("%w: %s fields are not editable in the %s step", ErrInvalidStep, last, s.st.Step)
		}
		return fn()
	})
}

func (s *Session) SetSourceChain(ctx context.Context, id chain.ID) error {
	if _, ok := chain.Lookup(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChain, uint16(id))
	}
	return s.inStep(ctx, StepSource, func() error {
		prev := s.st.SourceChain
		if prev == id {
			return nil
		}
		s.st.SourceChain = id
		s.st.SourceAsset = nil
		if s.st.TargetChain == id {
			s.st.TargetChain = prev
		}
		return nil
	})
}

// SetSourceAsset selects the asset on the current source chain.
func (s *Session) SetSourceAsset(ctx context.Context, asset Asset) error {
	return s.inStep(ctx, StepSource, func() error {
		if s.st.SourceChain == 0 {
			return ErrNoSourceChain
		}
		if asset.OriginChain == 0 {
			asset.OriginChain = s.st.SourceChain
		}
		if asset.OriginAddressHex == "" {
			if f, err := chain.FamilyOf(asset.OriginChain); err == nil && asset.Address != "" {
				if hexAddr, err := f.CanonicalHex(asset.Address); err == nil {
					asset.OriginAddressHex = hexAddr
				}
			}
		}
		asset.Chain = s.st.SourceChain
		s.st.SourceAsset = &asset
		return nil
	})
}

func (s *Session) SetAmount(ctx context.Context, fiat string) error {
	return s.inStep(ctx, StepSource, func() error {
		s.st.RequestedFiatAmount = fiat
		return nil
	})
}

func (s *Session) SetTargetChain(ctx context.Context, id chain.ID) error {
	if _, ok := chain.Lookup(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChain, uint16(id))
	}
	return s.inStep(ctx, StepTarget, func() error {
		prev := s.st.TargetChain
		if prev == id {
			return nil
		}
		if s.st.SourceChain == id {
			// swapping moves the source chain too
			if s.st.Step != StepSource {
				return fmt.Errorf("%w: target chain equals the source chain", ErrInvalidStep)
			}
			s.st.SourceChain = prev
			s.st.SourceAsset = nil
		}
		s.st.TargetChain = id
		return nil
	})
}

// SetConnectedAddress reports a wallet event for id. An empty addr means the
// wallet disconnected.
func (s *Session) SetConnectedAddress(ctx context.Context, id chain.ID, addr string) error {
	return s.do(ctx, func() error {
		s.wallets.Set(id, addr)
		return nil
	})
}

func (s *Session) SetMerchant(ctx context.Context, merchantID string, orderID int64) error {
	return s.unlocked(ctx, func() error {
		s.st.MerchantID = merchantID
		s.st.OrderID = orderID
		return nil
	})
}

// Next advances from the source or target step once it is complete.
func (s *Session) Next(ctx context.Context) error {
	return s.do(ctx, func() error {
		switch s.st.Step {
		case StepSource:
			if err := SourceError(s.st, s.deps.Chains); err != nil {
				return fmt.Errorf("%w: %w", ErrStepIncomplete, err)
			}
			s.st.Step = StepTarget
		case StepTarget:
			if err := SourceError(s.st, s.deps.Chains); err != nil {
				return fmt.Errorf("%w: %w", ErrStepIncomplete, err)
			}
			if err := TargetError(s.st, s.deps.Chains, s.deps.Registry); err != nil {
				return fmt.Errorf("%w: %w", ErrStepIncomplete, err)
			}
			s.st.Step = StepSend
		default:
			return ErrInvalidStep
		}
		return nil
	})
}

// SetStep moves back to an earlier step while fields are not locked.
func (s *Session) SetStep(ctx context.Context, step Step) error {
	return s.unlocked(ctx, func() error {
		if step < StepSource || step > s.st.Step {
			return ErrInvalidStep
		}
		s.st.Step = step
		return nil
	})
}

// Approve grants the token bridge the quoted amount, or an unlimited
// allowance. Failures land in State.Allowance.Error.
func (s *Session) Approve(ctx context.Context, unlimited bool) error {
	return s.do(ctx, func() error {
		if IsWrongWallet(s.st, s.wallets) {
			return ErrWrongWallet
		}
		if !allowance.RequiredFor(s.st) {
			return ErrApproveNotRequired
		}
		if s.st.Allowance.IsApproving || s.st.Allowance.IsFetching || s.st.IsSending {
			return ErrInFlight
		}
		if _, ok := s.st.ActualAmount(); !ok {
			return ErrQuoteUnavailable
		}
		s.allowance.Approve(s.ctx, s.st, unlimited)
		return nil
	})
}

// Submit sends the transfer. It returns once the submission started; the
// outcome is observed through the state.
func (s *Session) Submit(ctx context.Context) error {
	return s.do(ctx, func() error {
		if err := SendError(s.st, s.deps.Chains, s.deps.Registry, s.wallets); err != nil {
			s.st.LastError = err.Error()
			return err
		}
		if s.deps.Submitter == nil {
			return ErrWalletNotConnected
		}
		amount, _ := s.st.ActualAmount()
		parsed, _ := s.st.SourceParsedAccount.Value()
		req := Request{
			SourceChain:      s.st.SourceChain,
			Owner:            s.st.SourceWalletAddress,
			Asset:            s.st.SourceAsset.Address,
			IsNativeAsset:    parsed.IsNativeAsset,
			Amount:           amount,
			TargetChain:      s.st.TargetChain,
			TargetAddressHex: s.st.TargetAddressHex,
		}

		s.st.IsSending = true
		s.st.LastError = ""
		ticket := s.submission.Issue(s.id)
		log := s.logger.WithFields(logrus.Fields{
			"session":      s.id,
			"source_chain": req.SourceChain.String(),
			"target_chain": req.TargetChain.String(),
			"amount":       req.Amount.String(),
		})
		log.Info("submitting transfer")

		loop.Async(s.ctx, s.loop, func(ctx context.Context) (*Transaction, error) {
			return s.deps.Submitter.SubmitTransfer(ctx, req)
		}, func(tx *Transaction, err error) {
			if !ticket.Current() {
				log.Warn("dropping submission result after reset")
				return
			}
			s.st.IsSending = false
			s.deps.Metrics.RecordSubmission(req.SourceChain.String(), req.TargetChain.String(), err == nil)
			if err != nil {
				log.WithError(err).Error("transfer submission failed")
				s.st.LastError = err.Error()
				return
			}
			s.onSubmitted(tx, log)
		})
		return nil
	})
}

func (s *Session) onSubmitted(tx *Transaction, log *logrus.Entry) {
	s.st.TransferTx = tx
	s.st.IsVAAPending = true
	s.submittedAt = time.Now()
	log.WithFields(logrus.Fields{
		"tx_id":    tx.ID,
		"sequence": tx.Sequence,
	}).Info("transfer submitted")

	if s.deps.Auditor != nil {
		rec := audit.NewRecord(tx, s.st.MerchantID, s.st.OrderID)
		go s.deps.Auditor.RecordTransferCreated(s.ctx, rec)
	}

	if s.deps.Watcher == nil {
		return
	}
	watchCtx, cancel := context.WithCancel(s.ctx)
	s.cancelWatch = cancel
	ticket := s.submission.Issue(s.id)
	loop.Async(watchCtx, s.loop, func(ctx context.Context) ([]byte, error) {
		return s.deps.Watcher.WaitSigned(ctx, tx)
	}, func(_ []byte, err error) {
		if !ticket.Current() {
			return
		}
		if err != nil {
			log.WithError(err).Warn("stopped waiting for attestation")
			return
		}
		s.markSettled()
	})
}

// MarkSettled records that the transfer's VAA was observed.
func (s *Session) MarkSettled(ctx context.Context) error {
	return s.do(ctx, func() error {
		if s.st.TransferTx == nil {
			return ErrInvalidStep
		}
		s.markSettled()
		return nil
	})
}

func (s *Session) markSettled() {
	if s.st.IsSendComplete {
		return
	}
	s.st.IsVAAPending = false
	s.st.IsSendComplete = true
	s.st.Step = StepComplete
	if !s.submittedAt.IsZero() {
		s.deps.Metrics.RecordSettlement(time.Since(s.submittedAt))
	}
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
}

// Reset returns to the initial state from any state. Completions of requests
// started before the reset are dropped. Connected wallets are kept.
func (s *Session) Reset(ctx context.Context) error {
	return s.do(ctx, func() error {
		s.allowance.Reset()
		s.target.Reset()
		s.price.Reset()
		s.sourceAccount.Invalidate()
		s.targetAccount.Invalidate()
		s.submission.Invalidate()
		if s.cancelWatch != nil {
			s.cancelWatch()
			s.cancelWatch = nil
		}
		s.submittedAt = time.Time{}
		*s.st = model.TransferState{}
		s.nft.Reset()
		s.reactor.forget()
		return nil
	})
}

// SetNFTSource selects the NFT to bridge. The NFT transfer shares the
// session's wallets and destination address handling.
func (s *Session) SetNFTSource(ctx context.Context, sourceChain, originChain chain.ID, originAssetHex, tokenID string) error {
	for _, id := range []chain.ID{sourceChain, originChain} {
		if _, ok := chain.Lookup(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownChain, uint16(id))
		}
	}
	return s.do(ctx, func() error {
		if s.nft.State().ShouldLockFields() {
			return ErrFieldsLocked
		}
		s.nft.SetSource(sourceChain, originChain, originAssetHex, tokenID)
		return nil
	})
}

func (s *Session) SetNFTTargetChain(ctx context.Context, id chain.ID) error {
	if _, ok := chain.Lookup(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChain, uint16(id))
	}
	return s.do(ctx, func() error {
		if s.nft.State().ShouldLockFields() {
			return ErrFieldsLocked
		}
		s.nft.SetTargetChain(id)
		return nil
	})
}

func (s *Session) NFT(ctx context.Context) (NFTView, error) {
	var v NFTView
	err := s.do(ctx, func() error {
		v = NFTView{
			State:                 s.nft.State(),
			ReadableTargetAddress: s.nft.ReadableTargetAddress(),
		}
		return nil
	})
	return v, err
}

// Snapshot returns a consistent view of the session.
func (s *Session) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.do(ctx, func() error {
		v = s.view()
		return nil
	})
	return v, err
}
