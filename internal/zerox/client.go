package zerox

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/vultisig/verifier/plugin/libhttp"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://polygon.api.0x.org"

type Client struct {
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient builds a quote client allowing rps requests per second. A
// non-positive rps disables rate limiting.
func NewClient(baseURL, apiKey string, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(limit, 1),
	}
}

type QuoteResponse struct {
	BuyAmount  string `json:"buyAmount"`
	SellAmount string `json:"sellAmount"`
	Price      string `json:"price"`
}

// Quote returns the amount of buyToken obtainable for sellAmount of sellToken.
func (c *Client) Quote(ctx context.Context, sellToken, buyToken string, sellAmount *big.Int) (string, error) {
	params := map[string]string{
		"sellToken":  sellToken,
		"buyToken":   buyToken,
		"sellAmount": sellAmount.String(),
	}
	resp, err := call[QuoteResponse](ctx, c, http.MethodGet, "/swap/v1/quote", params)
	if err != nil {
		return "", fmt.Errorf("failed to call 0x API: %w", err)
	}
	if resp.BuyAmount == "" {
		return "", fmt.Errorf("empty buyAmount in 0x quote")
	}
	return resp.BuyAmount, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, params map[string]string) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("rate limiter: %w", err)
	}

	headers := map[string]string{
		"Accept": "application/json",
	}
	if c.apiKey != "" {
		headers["0x-api-key"] = c.apiKey
	}
	return libhttp.Call[T](ctx, method, c.baseURL+path, headers, nil, params)
}
