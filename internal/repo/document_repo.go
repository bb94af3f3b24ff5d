package repo

import (
	"context"
	"database/sql"

	"github.com/typeq/typeq/internal/model"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Get(ctx context.Context, filename string) (*model.Document, error) {
	const query = `
		SELECT filename, raw_text, chunk_strategy, source_type, mtime
		FROM documents
		WHERE filename = $1
	`
	row := r.db.QueryRowContext(ctx, query, filename)
	var doc model.Document
	if err := row.Scan(&doc.Filename, &doc.RawText, &doc.Strategy, &doc.SourceType, &doc.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) Upsert(ctx context.Context, doc *model.Document) error {
	const query = `
		INSERT INTO documents (filename, raw_text, chunk_strategy, source_type, mtime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (filename) DO UPDATE SET
			raw_text = EXCLUDED.raw_text,
			chunk_strategy = EXCLUDED.chunk_strategy,
			source_type = EXCLUDED.source_type,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.Filename,
		doc.RawText,
		doc.Strategy,
		doc.SourceType,
		doc.Mtime,
	)
	return err
}

func (r *DocumentRepo) Delete(ctx context.Context, filename string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE filename = $1`, filename)
	return err
}

func (r *DocumentRepo) List(ctx context.Context) ([]model.Document, error) {
	const query = `
		SELECT filename, raw_text, chunk_strategy, source_type, mtime
		FROM documents
		ORDER BY filename
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.Filename, &doc.RawText, &doc.Strategy, &doc.SourceType, &doc.Mtime); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
