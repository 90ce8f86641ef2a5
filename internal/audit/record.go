// Package audit records created transfers for the merchant backend. Records
// are queued by the session and persisted by the worker.
package audit

import (
	"errors"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/model"
)

const (
	TypeTransferCreated = "xpay:transfer_created"
	QueueName           = "xpay_audit"

	StatusCreated = "CREATED"
)

var ErrInvalidRecord = errors.New("invalid audit record")

type Record struct {
	ID             string   `json:"id"`
	ChainID        chain.ID `json:"chainId"`
	EmitterAddress string   `json:"emitterAddress"`
	Sequence       string   `json:"sequence"`
	MerchantID     string   `json:"merchantId"`
	OrderID        int64    `json:"orderId"`
	Status         string   `json:"status"`
}

func NewRecord(tx *model.Transaction, merchantID string, orderID int64) Record {
	return Record{
		ID:             tx.ID,
		ChainID:        tx.ChainID,
		EmitterAddress: tx.EmitterAddress,
		Sequence:       tx.Sequence,
		MerchantID:     merchantID,
		OrderID:        orderID,
		Status:         StatusCreated,
	}
}

func (r Record) Validate() error {
	if r.ID == "" || r.EmitterAddress == "" || r.Sequence == "" || r.ChainID == 0 {
		return ErrInvalidRecord
	}
	return nil
}
