package repo

import (
	"context"
	"database/sql"

	"github.com/typeq/typeq/internal/model"
)

// PendingRepo tracks ingests cut off by the wall-clock limit so the
// resume job can finish them.
type PendingRepo struct {
	db *sql.DB
}

func NewPendingRepo(db *sql.DB) *PendingRepo {
	return &PendingRepo{db: db}
}

func (r *PendingRepo) Upsert(ctx context.Context, item *model.PendingIngest) error {
	const query = `
		INSERT INTO ingest_pending (filename, chunk_strategy, processed, ctime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (filename) DO UPDATE SET
			chunk_strategy = EXCLUDED.chunk_strategy,
			processed = EXCLUDED.processed,
			ctime = EXCLUDED.ctime
	`
	_, err := r.db.ExecContext(ctx, query, item.Filename, item.Strategy, item.Processed, item.Ctime)
	return err
}

func (r *PendingRepo) List(ctx context.Context, limit int) ([]model.PendingIngest, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT filename, chunk_strategy, processed, ctime
		FROM ingest_pending
		ORDER BY ctime
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PendingIngest
	for rows.Next() {
		var item model.PendingIngest
		if err := rows.Scan(&item.Filename, &item.Strategy, &item.Processed, &item.Ctime); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PendingRepo) Delete(ctx context.Context, filename string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ingest_pending WHERE filename = $1`, filename)
	return err
}
