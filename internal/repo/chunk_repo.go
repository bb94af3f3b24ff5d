package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/typeq/typeq/internal/model"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

const chunkColumns = "content, embedding, filename, chunk_index, total_chunks, chunk_type, chunk_strategy, source_type, ctime"

func (r *ChunkRepo) Insert(ctx context.Context, chunk *model.Chunk) error {
	query := fmt.Sprintf(`INSERT INTO chunks (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, chunkColumns)
	_, err := r.db.ExecContext(ctx, query,
		chunk.Content,
		pgvector.NewVector(chunk.Embedding),
		chunk.Filename,
		chunk.ChunkIndex,
		chunk.TotalChunks,
		chunk.ChunkType,
		chunk.Strategy,
		chunk.SourceType,
		chunk.Ctime,
	)
	return err
}

func (r *ChunkRepo) DeleteByFilename(ctx context.Context, filename string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE filename = $1`, filename)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReplaceDocument swaps a document's whole chunk set in one
// transaction. The chunk set is a derived projection of the document's
// raw text; readers never see a half-replaced document commit.
func (r *ChunkRepo) ReplaceDocument(ctx context.Context, filename string, chunks []*model.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE filename = $1`, filename); err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO chunks (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, chunkColumns)
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, query,
			chunk.Content,
			pgvector.NewVector(chunk.Embedding),
			filename,
			chunk.ChunkIndex,
			chunk.TotalChunks,
			chunk.ChunkType,
			chunk.Strategy,
			chunk.SourceType,
			chunk.Ctime,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ChunkRepo) ListByFilename(ctx context.Context, filename string) ([]model.Chunk, error) {
	query := `
		SELECT id, content, filename, chunk_index, total_chunks, chunk_type, chunk_strategy, source_type, ctime
		FROM chunks
		WHERE filename = $1
		ORDER BY chunk_index
	`
	rows, err := r.db.QueryContext(ctx, query, filename)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Filename, &c.ChunkIndex, &c.TotalChunks, &c.ChunkType, &c.Strategy, &c.SourceType, &c.Ctime); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChunkRepo) CountByFilename(ctx context.Context, filename string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE filename = $1`, filename).Scan(&count)
	return count, err
}

// Search runs hybrid retrieval: cosine similarity against the vector
// column, with chunks containing the literal hint ranked by a
// composite score (similarity + literalWeight) instead of similarity
// alone. An empty literal degrades to pure semantic search. Similarity
// in the result is the plain cosine score, clamped to [0,1].
func (r *ChunkRepo) Search(ctx context.Context, embedding []float32, threshold float32, limit int, literal string, literalWeight float32) ([]model.ScoredChunk, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, content, filename, chunk_index, total_chunks, chunk_type, chunk_strategy, source_type, ctime,
		       1 - (embedding <=> $1) AS similarity,
		       ($2 <> '' AND content ILIKE '%' || $2 || '%') AS literal
		FROM chunks
		WHERE 1 - (embedding <=> $1) > $3
		   OR ($2 <> '' AND content ILIKE '%' || $2 || '%')
		ORDER BY (1 - (embedding <=> $1)) +
		         (CASE WHEN $2 <> '' AND content ILIKE '%' || $2 || '%' THEN $4::float8 ELSE 0 END) DESC
		LIMIT $5
	`
	rows, err := r.db.QueryContext(ctx, query,
		pgvector.NewVector(embedding),
		literal,
		threshold,
		literalWeight,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScoredChunk
	for rows.Next() {
		var c model.ScoredChunk
		var similarity float64
		if err := rows.Scan(&c.ID, &c.Content, &c.Filename, &c.ChunkIndex, &c.TotalChunks, &c.ChunkType, &c.Strategy, &c.SourceType, &c.Ctime, &similarity, &c.Literal); err != nil {
			return nil, err
		}
		switch {
		case similarity < 0:
			c.Similarity = 0
		case similarity > 1:
			c.Similarity = 1
		default:
			c.Similarity = float32(similarity)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChunkRepo) ListDocumentStats(ctx context.Context) ([]model.DocumentStat, error) {
	query := `
		SELECT filename, source_type, COUNT(*), MAX(ctime)
		FROM chunks
		GROUP BY filename, source_type
		ORDER BY filename
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.DocumentStat
	for rows.Next() {
		var stat model.DocumentStat
		if err := rows.Scan(&stat.Filename, &stat.SourceType, &stat.ChunkCount, &stat.Mtime); err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	return out, rows.Err()
}
