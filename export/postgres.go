// Package export persists final account snapshots to Postgres for offline
// reporting. It is a write-only sink gated on a DSN being configured; the
// engine itself stays fully in-memory.
package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerflow/ledger"
)

// Repository writes snapshot batches through a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the snapshot table when missing. Idempotent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS account_snapshots (
			batch_id    uuid           NOT NULL,
			client_id   integer        NOT NULL,
			available   numeric(20,4)  NOT NULL,
			held        numeric(20,4)  NOT NULL,
			total       numeric(20,4)  NOT NULL,
			locked      boolean        NOT NULL,
			exported_at timestamptz    NOT NULL DEFAULT now(),
			PRIMARY KEY (batch_id, client_id)
		)`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("export: ensure schema: %w", err)
	}
	return nil
}

// WriteBatch stores one row per account under a fresh batch id, inside a
// single transaction so a batch is either fully visible or absent.
func (r *Repository) WriteBatch(ctx context.Context, views []ledger.AccountView) (uuid.UUID, error) {
	batch := uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("export: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO account_snapshots (batch_id, client_id, available, held, total, locked)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for _, v := range views {
		_, err := tx.Exec(ctx, insert,
			batch,
			int32(v.ClientID),
			v.Available.String(),
			v.Held.String(),
			v.Total.String(),
			v.Locked,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("export: insert client %d: %w", v.ClientID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("export: commit: %w", err)
	}
	return batch, nil
}
