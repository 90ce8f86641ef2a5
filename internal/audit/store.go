package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS transfer_records (
		id              TEXT PRIMARY KEY,
		chain_id        INTEGER NOT NULL,
		emitter_address TEXT NOT NULL,
		sequence        TEXT NOT NULL,
		merchant_id     TEXT NOT NULL DEFAULT '',
		order_id        BIGINT NOT NULL DEFAULT 0,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

const insertQuery = `
	INSERT INTO transfer_records (
		id, chain_id, emitter_address, sequence, merchant_id, order_id, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create transfer_records: %w", err)
	}
	return nil
}

// Insert stores rec. Redelivered records are ignored.
func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.Exec(ctx, insertQuery,
		rec.ID,
		int32(rec.ChainID),
		rec.EmitterAddress,
		rec.Sequence,
		rec.MerchantID,
		rec.OrderID,
		rec.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer record: %w", err)
	}
	return nil
}
