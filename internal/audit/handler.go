package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/metrics"
)

type Store interface {
	Insert(ctx context.Context, rec Record) error
}

// Handler persists queued audit records in the worker.
type Handler struct {
	store   Store
	logger  *logrus.Logger
	metrics *metrics.WorkerMetrics
}

func NewHandler(store Store, m *metrics.WorkerMetrics, logger *logrus.Logger) *Handler {
	return &Handler{
		store:   store,
		logger:  logger.WithField("pkg", "audit.Handler").Logger,
		metrics: m,
	}
}

func (h *Handler) Handle(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	err := h.handle(ctx, t)
	h.metrics.RecordAudit(err == nil, time.Since(start))
	if err != nil {
		h.logger.WithError(err).Error("failed to handle audit task")
	}
	return err
}

func (h *Handler) handle(ctx context.Context, t *asynq.Task) error {
	var rec Record
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		return fmt.Errorf("failed to unmarshal record: %v: %w", err, asynq.SkipRetry)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := h.store.Insert(ctx, rec); err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{
		"tx_id":       rec.ID,
		"chain":       rec.ChainID.String(),
		"merchant_id": rec.MerchantID,
		"order_id":    rec.OrderID,
	}).Info("transfer record persisted")
	return nil
}
