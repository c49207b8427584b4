package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// ChunkRepository implements domain.ChunkRepository
type ChunkRepository struct {
	pool *pgxpool.Pool
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// LeastCovered returns chunks tied at the minimum question count, in random order
func (r *ChunkRepository) LeastCovered(ctx context.Context, limit int) ([]domain.ChunkCoverage, error) {
	query := `
		WITH coverage AS (
			SELECT cc.id, cc.chunk_text, COUNT(gq.id) AS question_count
			FROM content_chunks cc
			LEFT JOIN generated_questions gq ON gq.chunk_id = cc.id
			GROUP BY cc.id, cc.chunk_text
		)
		SELECT id, chunk_text, question_count
		FROM coverage
		WHERE question_count = (SELECT MIN(question_count) FROM coverage)
		ORDER BY RANDOM()
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, domain.NewStorageError("query chunk coverage", err)
	}
	defer rows.Close()

	var chunks []domain.ChunkCoverage
	for rows.Next() {
		var c domain.ChunkCoverage
		if err := rows.Scan(&c.Chunk.ID, &c.Chunk.Text, &c.QuestionCount); err != nil {
			return nil, domain.NewStorageError("scan chunk coverage", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate chunk coverage", err)
	}

	return chunks, nil
}

// SeedChunk inserts a chunk unless its id already exists
func (r *ChunkRepository) SeedChunk(ctx context.Context, chunk domain.ContentChunk) error {
	query := `
		INSERT INTO content_chunks (id, chunk_text)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, chunk.ID, chunk.Text); err != nil {
		return domain.NewStorageError("seed chunk", err)
	}
	return nil
}
