// Package price converts the requested fiat amount into the raw amount of
// the target asset through an off-chain swap quote.
package price

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/metrics"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/resource"
)

const (
	ErrQuoteFailed = "Unable to fetch price quote"

	// ReferenceToken is the currency the fiat amount is denominated in.
	ReferenceToken         = "USDC"
	referenceTokenDecimals = 6
)

var (
	ErrInvalidAmount = errors.New("amount must be a positive decimal")

	markup = decimal.RequireFromString("1.029")
)

type Quoter interface {
	Quote(ctx context.Context, sellToken, buyToken string, sellAmount *big.Int) (string, error)
}

type Key struct {
	Fiat     string
	BuyToken string
}

// ParseFiat parses a user-entered amount. Only positive decimals are valid.
func ParseFiat(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SellAmount is the reference token amount quoted for fiat: the fiat amount
// with markup applied, in base units, truncated.
func SellAmount(fiat string) (*big.Int, error) {
	d, err := ParseFiat(fiat)
	if err != nil {
		return nil, err
	}
	return d.Mul(markup).Shift(referenceTokenDecimals).Truncate(0).BigInt(), nil
}

// KeyOf is false until a valid amount and an existing target asset are known.
func KeyOf(st *model.TransferState) (Key, bool) {
	if _, err := ParseFiat(st.RequestedFiatAmount); err != nil {
		return Key{}, false
	}
	target, ok := st.TargetAsset.Value()
	if !ok || !target.Exists || target.Address == "" {
		return Key{}, false
	}
	return Key{Fiat: st.RequestedFiatAmount, BuyToken: target.Address}, true
}

// Stage must only be used from the event loop goroutine.
type Stage struct {
	loop    *loop.Loop
	quoter  Quoter
	logger  *logrus.Logger
	metrics *metrics.TransferMetrics

	guard resource.Guard[Key]
	memo  resource.Memo[Key]
}

func NewStage(l *loop.Loop, quoter Quoter, m *metrics.TransferMetrics, logger *logrus.Logger) *Stage {
	return &Stage{
		loop:    l,
		quoter:  quoter,
		logger:  logger,
		metrics: m,
	}
}

// Sync refreshes st.ActualTokenAmount. Only the latest request may commit.
func (s *Stage) Sync(ctx context.Context, st *model.TransferState) {
	key, ok := KeyOf(st)
	if !ok {
		s.guard.Invalidate()
		s.memo.Clear()
		st.ActualTokenAmount = resource.Idle[string]()
		return
	}
	if s.memo.Matches(key) && st.ActualTokenAmount.IsReady() {
		return
	}

	sellAmount, err := SellAmount(key.Fiat)
	if err != nil {
		st.ActualTokenAmount = resource.Idle[string]()
		return
	}

	ticket := s.guard.Issue(key)
	st.ActualTokenAmount = resource.Fetching[string]()
	started := time.Now()

	loop.Async(ctx, s.loop, func(ctx context.Context) (string, error) {
		return s.quoter.Quote(ctx, ReferenceToken, key.BuyToken, sellAmount)
	}, func(buyAmount string, err error) {
		if !ticket.Current() {
			s.metrics.RecordStaleDiscard("quote")
			return
		}
		if err == nil {
			if _, ok := new(big.Int).SetString(buyAmount, 10); !ok {
				err = errors.New("non-integer buyAmount: " + buyAmount)
			}
		}
		s.metrics.RecordQuote(err == nil, time.Since(started))
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"buy_token":   key.BuyToken,
				"sell_amount": sellAmount.String(),
			}).Error("price quote failed")
			s.memo.Clear()
			st.ActualTokenAmount = resource.Failed[string](ErrQuoteFailed)
			return
		}
		s.memo.Record(key)
		st.ActualTokenAmount = resource.Ready(buyAmount)
	})
}

func (s *Stage) Reset() {
	s.guard.Invalidate()
	s.memo.Clear()
}
