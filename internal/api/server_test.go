package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/transfer"
)

const payer = "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"

type stubChain struct{}

func (stubChain) Allowance(ctx context.Context, id chain.ID, owner, asset string) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (stubChain) Approve(ctx context.Context, id chain.ID, owner, asset string, amount *big.Int) error {
	return nil
}

func (stubChain) HasRegistry(id chain.ID) bool { return id.IsEVM() }

func (stubChain) WrappedAsset(ctx context.Context, target, originChain chain.ID, originAssetHex string) (string, error) {
	return "0x4318CB63A2b8edf2De971E2F17F77097e499459D", nil
}

func (stubChain) ParsedAccount(ctx context.Context, id chain.ID, owner, asset string) (transfer.ParsedAccount, error) {
	return transfer.ParsedAccount{Owner: owner, MintKey: asset, Decimals: 6, BalanceRaw: big.NewInt(10_000_000)}, nil
}

func (stubChain) SubmitTransfer(ctx context.Context, req transfer.Request) (*transfer.Transaction, error) {
	return &transfer.Transaction{ID: "0x1", EmitterAddress: "00", Sequence: "1", ChainID: req.SourceChain}, nil
}

func (stubChain) Quote(ctx context.Context, sellToken, buyToken string, sellAmount *big.Int) (string, error) {
	return "1000000", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	deps := transfer.Deps{
		Allowances: stubChain{},
		Approver:   stubChain{},
		Registry:   stubChain{},
		Accounts:   stubChain{},
		Quoter:     stubChain{},
		Submitter:  stubChain{},
		Chains:     chain.DefaultConfigMap(),
	}
	srv := NewServer(Config{}, NewSessions(ctx, deps, 64, logrus.New()), deps.Chains, logrus.New())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = res.Body.Close()
	}()

	var out map[string]any
	if res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	}
	return res.StatusCode, out
}

func TestServer_SessionFlow(t *testing.T) {
	ts := newTestServer(t)

	status, v := do(t, http.MethodPost, ts.URL+"/v1/sessions?merchantId=m-1", `{}`)
	require.Equal(t, http.StatusCreated, status)
	id := v["id"].(string)
	assert.Equal(t, "m-1", v["merchantId"])
	assert.Equal(t, "source", v["step"])
	base := ts.URL + "/v1/sessions/" + id

	status, _ = do(t, http.MethodPut, base+"/wallets/ethereum", `{"address":"`+payer+`"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPut, base+"/wallets/polygon", `{"address":"`+payer+`"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPut, base+"/source", `{"chain":"ethereum","asset":{"address":"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"}}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPut, base+"/amount", `{"amount":"1"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPut, base+"/target", `{"chain":"polygon"}`)
	require.Equal(t, http.StatusOK, status)

	require.Eventually(t, func() bool {
		_, v := do(t, http.MethodGet, base, "")
		return v["isSourceComplete"] == true && v["isTargetComplete"] == true
	}, 2*time.Second, 10*time.Millisecond)

	status, _ = do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, status)
	status, v = do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "send", v["step"])

	status, _ = do(t, http.MethodPut, base+"/source", `{"chain":"avalanche"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, v = do(t, http.MethodPost, base+"/submit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, transfer.ErrAllowanceInsufficient.Error(), v["error"])

	status, v = do(t, http.MethodPost, base+"/reset", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "source", v["step"])

	status, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_BadInput(t *testing.T) {
	ts := newTestServer(t)
	_, v := do(t, http.MethodPost, ts.URL+"/v1/sessions", `{"merchantId":"m-2","orderId":5}`)
	base := ts.URL + "/v1/sessions/" + v["id"].(string)
	assert.Equal(t, float64(5), v["orderId"])

	status, _ := do(t, http.MethodPut, base+"/target", `{"chain":"narnia"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, base+"/step", `{"step":"complete"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, base+"/next", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServer_ListChains(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/v1/chains")
	require.NoError(t, err)
	defer func() {
		_ = res.Body.Close()
	}()
	var chains []chainInfo
	require.NoError(t, json.NewDecoder(res.Body).Decode(&chains))

	var aurora *chainInfo
	for i := range chains {
		if chains[i].ID == chain.Aurora {
			aurora = &chains[i]
		}
	}
	require.NotNil(t, aurora)
	assert.Equal(t, "all", aurora.DisableTransfers)
	require.NotNil(t, aurora.Warning)
}

func TestServer_NFTTransfer(t *testing.T) {
	ts := newTestServer(t)
	_, v := do(t, http.MethodPost, ts.URL+"/v1/sessions", `{}`)
	base := ts.URL + "/v1/sessions/" + v["id"].(string)

	status, v := do(t, http.MethodPut, base+"/nft/source", `{"chain":"ethereum","originAssetHex":"00","tokenId":"7"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "7", v["tokenId"])

	status, v = do(t, http.MethodPut, base+"/nft/target", `{"chain":"polygon"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", v["targetAddressHex"])

	status, _ = do(t, http.MethodPut, base+"/wallets/polygon", `{"address":"`+payer+`"}`)
	require.Equal(t, http.StatusOK, status)

	status, v = do(t, http.MethodGet, base+"/nft", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "00000000000000000000000090f8bf6a479f320ead074411a4b0e7944ea8c9c1", v["targetAddressHex"])

	status, _ = do(t, http.MethodPut, base+"/nft/source", `{"chain":"ethereum"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, http.MethodPut, base+"/nft/target", `{"chain":"narnia"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSessions_CloseAll(t *testing.T) {
	sessions := NewSessions(context.Background(), transfer.Deps{Chains: chain.DefaultConfigMap()}, 8, logrus.New())
	first := sessions.Create()
	sessions.Create()
	require.Equal(t, 2, sessions.Len())

	assert.Equal(t, 2, sessions.CloseAll())
	assert.Equal(t, 0, sessions.Len())
	_, err := sessions.Get(first.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
}
