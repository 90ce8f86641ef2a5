package price

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/resource"
)

const buyToken = "0x4318CB63A2b8edf2De971E2F17F77097e499459D"

type mockQuoter struct {
	mu    sync.Mutex
	calls []*big.Int
	gates map[string]chan struct{}
	err   error
}

func (m *mockQuoter) Quote(ctx context.Context, sellToken, buyToken string, sellAmount *big.Int) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, sellAmount)
	gate := m.gates[sellAmount.String()]
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	// echo the sell amount so tests can tell quotes apart
	return sellAmount.String(), nil
}

func TestSellAmount(t *testing.T) {
	tests := []struct {
		fiat    string
		want    string
		wantErr bool
	}{
		{fiat: "100", want: "102900000"},
		{fiat: "1", want: "1029000"},
		{fiat: "0.01", want: "10290"},
		{fiat: "12.345678", want: "12703702"},
		{fiat: "0", wantErr: true},
		{fiat: "-5", wantErr: true},
		{fiat: "abc", wantErr: true},
		{fiat: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.fiat, func(t *testing.T) {
			got, err := SellAmount(tt.fiat)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func newHarness(t *testing.T, q *mockQuoter) (*loop.Loop, *Stage, *model.TransferState) {
	t.Helper()
	l := loop.New(logrus.New(), 16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = l.Run(ctx) }()

	st := &model.TransferState{
		TargetAsset: resource.Ready(model.TargetAsset{Exists: true, Address: buyToken}),
	}
	return l, NewStage(l, q, nil, logrus.New()), st
}

func setAmount(t *testing.T, l *loop.Loop, s *Stage, st *model.TransferState, fiat string) {
	require.NoError(t, l.Call(context.Background(), func() {
		st.RequestedFiatAmount = fiat
		s.Sync(context.Background(), st)
	}))
}

func amountOf(t *testing.T, l *loop.Loop, st *model.TransferState) resource.Resource[string] {
	var r resource.Resource[string]
	require.NoError(t, l.Call(context.Background(), func() { r = st.ActualTokenAmount }))
	return r
}

func TestStage_QuoteBecomesActualAmount(t *testing.T) {
	q := &mockQuoter{}
	l, s, st := newHarness(t, q)

	setAmount(t, l, s, st, "100")
	require.Eventually(t, func() bool { return amountOf(t, l, st).IsReady() }, time.Second, 5*time.Millisecond)
	v, _ := amountOf(t, l, st).Value()
	assert.Equal(t, "102900000", v)
}

func TestStage_IdleWithoutExistingTarget(t *testing.T) {
	q := &mockQuoter{}
	l, s, st := newHarness(t, q)

	require.NoError(t, l.Call(context.Background(), func() {
		st.TargetAsset = resource.Ready(model.TargetAsset{Exists: false})
		st.RequestedFiatAmount = "100"
		s.Sync(context.Background(), st)
	}))
	assert.True(t, amountOf(t, l, st).IsIdle())

	setAmount(t, l, s, st, "nope")
	assert.True(t, amountOf(t, l, st).IsIdle())
	assert.Empty(t, q.calls)
}

func TestStage_StaleQuoteDiscarded(t *testing.T) {
	slow := make(chan struct{})
	q := &mockQuoter{gates: map[string]chan struct{}{"10290000": slow}}
	l, s, st := newHarness(t, q)

	setAmount(t, l, s, st, "10")
	setAmount(t, l, s, st, "20")
	require.Eventually(t, func() bool { return amountOf(t, l, st).IsReady() }, time.Second, 5*time.Millisecond)

	close(slow)
	time.Sleep(20 * time.Millisecond)
	v, _ := amountOf(t, l, st).Value()
	assert.Equal(t, "20580000", v)
}

func TestStage_Failure(t *testing.T) {
	q := &mockQuoter{err: errors.New("429")}
	l, s, st := newHarness(t, q)

	setAmount(t, l, s, st, "5")
	require.Eventually(t, func() bool { return amountOf(t, l, st).IsFailed() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, ErrQuoteFailed, amountOf(t, l, st).Err())
}

func TestStage_ResetDropsQuote(t *testing.T) {
	gate := make(chan struct{})
	q := &mockQuoter{gates: map[string]chan struct{}{"5145000": gate}}
	l, s, st := newHarness(t, q)

	setAmount(t, l, s, st, "5")
	require.NoError(t, l.Call(context.Background(), func() {
		s.Reset()
		*st = model.TransferState{}
	}))
	close(gate)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, amountOf(t, l, st).IsIdle())
}
