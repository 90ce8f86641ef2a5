package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Recorder queues audit records. Failures never reach the caller.
type Recorder struct {
	client Enqueuer
	logger *logrus.Logger
}

func NewRecorder(client Enqueuer, logger *logrus.Logger) *Recorder {
	return &Recorder{
		client: client,
		logger: logger.WithField("pkg", "audit.Recorder").Logger,
	}
}

func (r *Recorder) RecordTransferCreated(ctx context.Context, rec Record) {
	if err := r.enqueue(ctx, rec); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"tx_id":       rec.ID,
			"merchant_id": rec.MerchantID,
		}).Error("failed to record transfer")
		return
	}
	r.logger.WithField("tx_id", rec.ID).Info("transfer recorded")
}

func (r *Recorder) enqueue(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	_, err = r.client.EnqueueContext(
		ctx,
		asynq.NewTask(TypeTransferCreated, payload),
		asynq.Queue(QueueName),
		asynq.TaskID(rec.ID),
		asynq.MaxRetry(10),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}
