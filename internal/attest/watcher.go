// Package attest waits for guardians to sign the VAA of a submitted transfer.
package attest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/verifier/plugin/libhttp"

	"github.com/vultisig/xpay/internal/model"
)

const DefaultGuardianURL = "https://api.wormholescan.io"

var errNotSigned = errors.New("signed vaa not available")

type signedVAAResponse struct {
	VAABytes string `json:"vaaBytes"`
}

type Watcher struct {
	baseURL  string
	interval time.Duration
	logger   *logrus.Logger
}

func NewWatcher(baseURL string, interval time.Duration, logger *logrus.Logger) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		baseURL:  baseURL,
		interval: interval,
		logger:   logger,
	}
}

// WaitSigned polls until the VAA for tx is signed and returns its bytes.
// Call errors are logged and retried; only ctx ends the wait early.
func (w *Watcher) WaitSigned(ctx context.Context, tx *model.Transaction) ([]byte, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := w.logger.WithFields(logrus.Fields{
		"chain":    tx.ChainID.String(),
		"emitter":  tx.EmitterAddress,
		"sequence": tx.Sequence,
	})

	for {
		vaa, err := w.fetch(ctx, tx)
		switch {
		case err == nil:
			log.Info("signed vaa available")
			return vaa, nil
		case errors.Is(err, errNotSigned):
			log.WithError(err).Debug("vaa not signed yet")
		default:
			log.WithError(err).Warn("failed to query signed vaa")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// fetch returns errNotSigned until guardians have published the VAA. The
// guardian API answers 404 until then, which surfaces as a call error.
func (w *Watcher) fetch(ctx context.Context, tx *model.Transaction) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v1/signed_vaa/%d/%s/%s", w.baseURL, uint16(tx.ChainID), tx.EmitterAddress, tx.Sequence)
	out, err := libhttp.Call[signedVAAResponse](ctx, http.MethodGet, endpoint, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNotSigned, err)
	}
	if out.VAABytes == "" {
		return nil, errNotSigned
	}
	vaa, err := base64.StdEncoding.DecodeString(out.VAABytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vaa bytes: %w", err)
	}
	return vaa, nil
}
