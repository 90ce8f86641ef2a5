package wallet

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vultisig/verifier/plugin/libhttp"

	"github.com/vultisig/xpay/internal/chain"
)

// TxRequest is an unsigned transaction handed to the wallet for signing and
// broadcast.
type TxRequest struct {
	Chain      chain.ID      `json:"chain"`
	EvmChainID uint64        `json:"evmChainId"`
	From       string        `json:"from"`
	To         string        `json:"to"`
	Data       hexutil.Bytes `json:"data"`
	Value      *hexutil.Big  `json:"value"`
}

func NewTxRequest(id chain.ID, from, to string, data []byte, value *big.Int) TxRequest {
	info, _ := chain.Lookup(id)
	if value == nil {
		value = new(big.Int)
	}
	return TxRequest{
		Chain:      id,
		EvmChainID: info.EvmChainID,
		From:       from,
		To:         to,
		Data:       data,
		Value:      (*hexutil.Big)(value),
	}
}

type Signer interface {
	SignAndSubmit(ctx context.Context, req TxRequest) (txHash string, err error)
}

// RemoteSigner forwards transactions to an external signing service which
// holds the user's keys.
type RemoteSigner struct {
	url string
}

func NewRemoteSigner(url string) *RemoteSigner {
	return &RemoteSigner{
		url: url,
	}
}

type signResponse struct {
	TxHash string `json:"txHash"`
	Error  string `json:"error,omitempty"`
}

func (s *RemoteSigner) SignAndSubmit(ctx context.Context, req TxRequest) (string, error) {
	res, err := libhttp.Call[signResponse](
		ctx,
		http.MethodPost,
		s.url,
		map[string]string{
			"Content-Type": "application/json",
		},
		req,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to call signer: %w", err)
	}
	if res.Error != "" {
		return "", fmt.Errorf("signer rejected tx: %s", res.Error)
	}
	if res.TxHash == "" {
		return "", fmt.Errorf("signer returned empty tx hash")
	}
	return res.TxHash, nil
}
