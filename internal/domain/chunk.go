package domain

import "context"

// ContentChunk is an ingested unit of source text. Chunks are written by the
// upstream ingestion process and are read-only here.
type ContentChunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ChunkCoverage pairs a chunk with the number of questions generated from it
type ChunkCoverage struct {
	Chunk         ContentChunk
	QuestionCount int
}

// ChunkRepository defines read access to content chunks
type ChunkRepository interface {
	// LeastCovered returns up to limit chunks that share the minimum question
	// count across all chunks. It returns an empty slice when no chunks exist.
	LeastCovered(ctx context.Context, limit int) ([]ChunkCoverage, error)
}

// ChunkSeeder stores chunks supplied outside the ingestion pipeline.
// Seeding a chunk id that already exists is a no-op.
type ChunkSeeder interface {
	SeedChunk(ctx context.Context, chunk ContentChunk) error
}
