package memory

import (
	"context"
	"math/rand/v2"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// LeastCovered implements domain.ChunkRepository. Ties are returned in random order.
func (s *Store) LeastCovered(ctx context.Context, limit int) ([]domain.ChunkCoverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("query chunk coverage", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.chunks))
	for _, entry := range s.questions {
		counts[entry.record.ChunkID]++
	}

	minCount := -1
	for _, chunk := range s.chunks {
		if c := counts[chunk.ID]; minCount < 0 || c < minCount {
			minCount = c
		}
	}

	var result []domain.ChunkCoverage
	for _, chunk := range s.chunks {
		if counts[chunk.ID] == minCount {
			result = append(result, domain.ChunkCoverage{Chunk: chunk, QuestionCount: minCount})
		}
	}

	// Shuffle before truncating so every tied chunk can be returned
	rand.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})
	if limit >= 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// SeedChunk implements domain.ChunkSeeder
func (s *Store) SeedChunk(ctx context.Context, chunk domain.ContentChunk) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("seed chunk", err)
	}

	s.mu.RLock()
	for _, existing := range s.chunks {
		if chunk.ID != "" && existing.ID == chunk.ID {
			s.mu.RUnlock()
			return nil
		}
	}
	s.mu.RUnlock()

	s.AddChunk(chunk)
	return nil
}
