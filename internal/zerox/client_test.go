package zerox

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/v1/quote", r.URL.Path)
		assert.Equal(t, "USDC", r.URL.Query().Get("sellToken"))
		assert.Equal(t, "0x4318CB63A2b8edf2De971E2F17F77097e499459D", r.URL.Query().Get("buyToken"))
		assert.Equal(t, "102900000", r.URL.Query().Get("sellAmount"))
		assert.Equal(t, "secret", r.Header.Get("0x-api-key"))
		_, _ = w.Write([]byte(`{"buyAmount":"99876543","sellAmount":"102900000","price":"0.97"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 0)
	got, err := c.Quote(context.Background(), "USDC", "0x4318CB63A2b8edf2De971E2F17F77097e499459D", big.NewInt(102_900_000))
	require.NoError(t, err)
	assert.Equal(t, "99876543", got)
}

func TestClient_QuoteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"buyAmount":"1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 1)
	_, err := c.Quote(context.Background(), "USDC", "0x1", big.NewInt(1))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Quote(ctx, "USDC", "0x1", big.NewInt(1))
	require.ErrorContains(t, err, "rate limiter")
}

func TestClient_QuoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusBadRequest, body: `{"code":100,"reason":"Validation Failed"}`, wantErr: "failed to call 0x API"},
		{name: "missing amount", status: http.StatusOK, body: `{}`, wantErr: "empty buyAmount"},
		{name: "garbage", status: http.StatusOK, body: `not json`, wantErr: "failed to call 0x API"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", 10).Quote(context.Background(), "USDC", "0x1", big.NewInt(1))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
