package attest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
)

var testTx = &model.Transaction{
	ID:             "0xabc",
	EmitterAddress: "0000000000000000000000003ee18b2214aff97000d974cf647e7c347e8fa585",
	Sequence:       "42",
	ChainID:        chain.Ethereum,
}

func TestWatcher_PollsUntilSigned(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/signed_vaa/2/0000000000000000000000003ee18b2214aff97000d974cf647e7c347e8fa585/42", r.URL.Path)
		switch hits.Add(1) {
		case 1:
			w.WriteHeader(http.StatusNotFound)
		case 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"vaaBytes":"AQID"}`))
		}
	}))
	defer srv.Close()

	w := NewWatcher(srv.URL, 5*time.Millisecond, logrus.New())
	vaa, err := w.WaitSigned(context.Background(), testTx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, vaa)
	assert.Equal(t, int32(3), hits.Load())
}

func TestWatcher_StopsOnContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := NewWatcher(srv.URL, 5*time.Millisecond, logrus.New()).WaitSigned(ctx, testTx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
