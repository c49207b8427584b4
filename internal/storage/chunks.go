// Package storage reads seed content from the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zizouhuweidi/slidequiz/internal/domain"
)

// maxChunkSize bounds a single seed file
const maxChunkSize = 1 << 20

var allowedExts = map[string]bool{
	".txt": true,
	".md":  true,
}

// ChunkDirectory loads content chunks from text files in a directory.
// Each file becomes one chunk whose id is the file name without extension.
type ChunkDirectory struct {
	basePath string
}

// NewChunkDirectory creates a chunk directory, creating basePath if needed
func NewChunkDirectory(basePath string) (*ChunkDirectory, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %w", err)
	}

	return &ChunkDirectory{
		basePath: basePath,
	}, nil
}

// LoadChunks reads every eligible file in name order. Empty files are skipped.
func (d *ChunkDirectory) LoadChunks() ([]domain.ContentChunk, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var chunks []domain.ContentChunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if err := ValidateChunkFile(entry.Name(), info.Size()); err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(d.basePath, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		chunks = append(chunks, domain.ContentChunk{
			ID:   strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Text: text,
		})
	}
	return chunks, nil
}

// Seed writes every chunk in the directory to seeder and returns how many were offered
func (d *ChunkDirectory) Seed(ctx context.Context, seeder domain.ChunkSeeder) (int, error) {
	chunks, err := d.LoadChunks()
	if err != nil {
		return 0, err
	}
	for _, chunk := range chunks {
		if err := seeder.SeedChunk(ctx, chunk); err != nil {
			return 0, fmt.Errorf("failed to seed chunk %s: %w", chunk.ID, err)
		}
	}
	return len(chunks), nil
}

// ValidateChunkFile checks a seed file's name and size
func ValidateChunkFile(name string, size int64) error {
	if size > maxChunkSize {
		return fmt.Errorf("file too large: maximum size is 1MB")
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExts[ext] {
		return fmt.Errorf("invalid file type: only txt and md are allowed")
	}

	return nil
}
