package service

import (
	"context"
	"math/rand/v2"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

const defaultCandidateLimit = 64

// ChunkRanker picks the content chunk with the fewest generated questions
type ChunkRanker struct {
	chunks         domain.ChunkRepository
	candidateLimit int
	intn           func(int) int
}

// NewChunkRanker creates a new ChunkRanker
func NewChunkRanker(chunks domain.ChunkRepository) *ChunkRanker {
	return &ChunkRanker{
		chunks:         chunks,
		candidateLimit: defaultCandidateLimit,
		intn:           rand.IntN,
	}
}

// SelectChunk returns one chunk among those tied for the minimum question
// count, chosen uniformly at random. It returns nil without error when no
// chunks exist.
func (r *ChunkRanker) SelectChunk(ctx context.Context) (*domain.ContentChunk, error) {
	candidates, err := r.chunks.LeastCovered(ctx, r.candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Repositories return only the tied minimum, but guard against a wider set.
	least := candidates[0].QuestionCount
	for _, c := range candidates[1:] {
		if c.QuestionCount < least {
			least = c.QuestionCount
		}
	}
	tied := candidates[:0:0]
	for _, c := range candidates {
		if c.QuestionCount == least {
			tied = append(tied, c)
		}
	}

	chunk := tied[r.intn(len(tied))].Chunk
	return &chunk, nil
}
