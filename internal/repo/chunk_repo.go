package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/dbutil"
)

// ChunkRepo is the persisted side of the vector index: one row per document
// chunk, embedding stored in a pgvector column. The index treats the table as
// its single canonical location.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO index_chunks (source_filename, content, embedding, ctime)
		VALUES ($1, $2, $3, $4)
	`
	now := time.Now().Unix()
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %d from %s has no embedding", i, chunk.SourceFilename)
		}
		if _, err := tx.ExecContext(ctx, query,
			chunk.SourceFilename, chunk.Text, pgvector.NewVector(chunk.Embedding), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ChunkRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM index_chunks`)
	return err
}

func (r *ChunkRepo) ListAll(ctx context.Context) ([]model.DocumentChunk, error) {
	where := map[string]interface{}{
		"_orderby": "id asc",
	}
	sqlStr, args, err := builder.BuildSelect("index_chunks", where, []string{"source_filename", "content", "embedding"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []model.DocumentChunk
	for rows.Next() {
		var chunk model.DocumentChunk
		var embedding pgvector.Vector
		if err := rows.Scan(&chunk.SourceFilename, &chunk.Text, &embedding); err != nil {
			return nil, err
		}
		chunk.Embedding = embedding.Slice()
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
