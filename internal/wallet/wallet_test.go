package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vultisig/xpay/internal/chain"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, ok := r.ConnectedAddress(chain.Ethereum)
	require.False(t, ok)

	r.Set(chain.Ethereum, "0xabc")
	addr, ok := r.ConnectedAddress(chain.Ethereum)
	require.True(t, ok)
	require.Equal(t, "0xabc", addr)
	require.Equal(t, map[chain.ID]string{chain.Ethereum: "0xabc"}, r.Snapshot())

	r.Set(chain.Ethereum, "")
	_, ok = r.ConnectedAddress(chain.Ethereum)
	require.False(t, ok)
}

func TestRemoteSigner_SignAndSubmit(t *testing.T) {
	var got TxRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(signResponse{TxHash: "0xfeed"})
	}))
	defer srv.Close()

	s := NewRemoteSigner(srv.URL)
	hash, err := s.SignAndSubmit(context.Background(),
		NewTxRequest(chain.Polygon, "0x01", "0x02", []byte{0xde, 0xad}, big.NewInt(7)))
	require.NoError(t, err)
	require.Equal(t, "0xfeed", hash)
	require.Equal(t, uint64(137), got.EvmChainID)
	require.Equal(t, []byte{0xde, 0xad}, []byte(got.Data))
	require.Equal(t, int64(7), got.Value.ToInt().Int64())
}

func TestRemoteSigner_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    signResponse
		wantErr string
	}{
		{name: "rejected in body", status: http.StatusOK, body: signResponse{Error: "user rejected"}, wantErr: "user rejected"},
		{name: "empty hash", status: http.StatusOK, body: signResponse{}, wantErr: "empty tx hash"},
		{name: "bad status", status: http.StatusBadRequest, body: signResponse{Error: "user rejected"}, wantErr: "failed to call signer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			_, err := NewRemoteSigner(srv.URL).SignAndSubmit(context.Background(),
				NewTxRequest(chain.Ethereum, "0x01", "0x02", nil, nil))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
