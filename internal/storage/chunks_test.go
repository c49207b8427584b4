package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zizouhuweidi/slidequiz/internal/repository/memory"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadChunks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-cells.md", "# Cells\nCells divide.")
	writeFile(t, dir, "a-water.txt", "  Water boils at 100C.  ")
	writeFile(t, dir, "empty.txt", "   ")
	writeFile(t, dir, "photo.png", "binary")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0755))

	chunkDir, err := NewChunkDirectory(dir)
	require.NoError(t, err)

	chunks, err := chunkDir.LoadChunks()
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a-water", chunks[0].ID)
	assert.Equal(t, "Water boils at 100C.", chunks[0].Text)
	assert.Equal(t, "b-cells", chunks[1].ID)
}

func TestNewChunkDirectoryCreatesPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seed", "chunks")
	chunkDir, err := NewChunkDirectory(dir)
	require.NoError(t, err)

	chunks, err := chunkDir.LoadChunks()
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "first chunk")
	writeFile(t, dir, "two.txt", "second chunk")

	chunkDir, err := NewChunkDirectory(dir)
	require.NoError(t, err)
	store := memory.NewStore()

	seeded, err := chunkDir.Seed(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 2, seeded)

	_, err = chunkDir.Seed(context.Background(), store)
	require.NoError(t, err)

	coverage, err := store.LeastCovered(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, coverage, 2)
}

func TestValidateChunkFile(t *testing.T) {
	assert.NoError(t, ValidateChunkFile("notes.TXT", 10))
	assert.Error(t, ValidateChunkFile("notes.pdf", 10))
	assert.Error(t, ValidateChunkFile("notes.md", maxChunkSize+1))
}
