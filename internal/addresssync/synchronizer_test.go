package addresssync

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
	"github.com/vultisig/xpay/internal/wallet"
)

const evmAddr = "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"

func TestSynchronizer_Sync(t *testing.T) {
	w := wallet.NewRegistry()
	w.Set(chain.Polygon, evmAddr)
	w.Set(chain.Near, "alice.near")
	s := NewSynchronizer(w, nil, logrus.New())

	tests := []struct {
		name   string
		target chain.ID
		want   string
	}{
		{name: "evm zero padded", target: chain.Polygon, want: "00000000000000000000000090f8bf6a479f320ead074411a4b0e7944ea8c9c1"},
		{name: "near hashed", target: chain.Near, want: chain.HashAccountID("alice.near")},
		{name: "no wallet", target: chain.Bsc, want: ""},
		{name: "no target", target: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &model.TransferState{TargetChain: tt.target, TargetAddressHex: "stale"}
			s.Sync(st, true)
			assert.Equal(t, tt.want, st.TargetAddressHex)
		})
	}
}

func TestSynchronizer_DisabledIsNoop(t *testing.T) {
	w := wallet.NewRegistry()
	w.Set(chain.Polygon, evmAddr)
	s := NewSynchronizer(w, nil, logrus.New())

	st := &model.TransferState{TargetChain: chain.Polygon, TargetAddressHex: "locked"}
	s.Sync(st, false)
	assert.Equal(t, "locked", st.TargetAddressHex)
}

func TestSynchronizer_PayeeTakesPrecedence(t *testing.T) {
	w := wallet.NewRegistry()
	w.Set(chain.Polygon, evmAddr)
	s := NewSynchronizer(w, map[chain.ID]string{
		chain.Polygon: "0x1111111111111111111111111111111111111111",
	}, logrus.New())

	st := &model.TransferState{TargetChain: chain.Polygon}
	s.Sync(st, true)
	assert.Equal(t, "0000000000000000000000001111111111111111111111111111111111111111", st.TargetAddressHex)
}

func TestSynchronizer_InvalidAddressClears(t *testing.T) {
	w := wallet.NewRegistry()
	w.Set(chain.Polygon, "not-an-address")
	s := NewSynchronizer(w, nil, logrus.New())

	st := &model.TransferState{TargetChain: chain.Polygon, TargetAddressHex: "stale"}
	s.Sync(st, true)
	assert.Empty(t, st.TargetAddressHex)
}

func TestReadable(t *testing.T) {
	nearHex := chain.HashAccountID("alice.near")
	aptosHex := "0000000000000000000000000000000000000000000000000000000000000abc"

	assert.Equal(t, "alice.near", Readable(chain.Near, nearHex, "alice.near"))
	assert.Equal(t, nearHex, Readable(chain.Near, nearHex, "bob.near"))
	assert.Equal(t, "0x"+aptosHex, Readable(chain.Aptos, aptosHex, ""))
	assert.Equal(t, evmAddr, Readable(chain.Polygon, "00000000000000000000000090f8bf6a479f320ead074411a4b0e7944ea8c9c1", ""))
	assert.Empty(t, Readable(chain.Polygon, "", ""))
}

func TestSynchronizer_ReadableUsesWalletIdentity(t *testing.T) {
	w := wallet.NewRegistry()
	w.Set(chain.Near, "alice.near")
	s := NewSynchronizer(w, nil, logrus.New())

	assert.Equal(t, "alice.near", s.Readable(chain.Near, chain.HashAccountID("alice.near")))
}
