package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type indexTestEmbedder struct{}

func (indexTestEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (indexTestEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIndexDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(root, "internal", "auth", "auth.go"), "package auth\n\nfunc Validate() {}\n")
	writeFile(t, filepath.Join(root, ".git", "config"), "[core]\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "module.exports = {}\n")
	writeFile(t, filepath.Join(root, "logo.bin"), "abc\x00def")

	store, err := NewStore(StoreConfig{}, indexTestEmbedder{}, zap.NewNop())
	require.NoError(t, err)
	ix, err := NewIndexer(store, zap.NewNop())
	require.NoError(t, err)

	stats, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 1, stats.Skipped)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexDirectory_StoresRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "util.go"), "package pkg\n\nfunc Util() {}\n")

	store, err := NewStore(StoreConfig{}, indexTestEmbedder{}, zap.NewNop())
	require.NoError(t, err)
	ix, err := NewIndexer(store, zap.NewNop())
	require.NoError(t, err)

	_, err = ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)

	docs, err := store.Retrieve(context.Background(), "Util", "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "pkg/util.go", docs[0].Path)
}

func TestIndexDirectory_Cancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")

	store, err := NewStore(StoreConfig{}, indexTestEmbedder{}, zap.NewNop())
	require.NoError(t, err)
	ix, err := NewIndexer(store, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ix.IndexDirectory(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIndexer_RequiresStore(t *testing.T) {
	_, err := NewIndexer(nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestChunkText(t *testing.T) {
	t.Run("small file single chunk", func(t *testing.T) {
		chunks := chunkText("package a\n\nfunc A() {}\n")
		require.Len(t, chunks, 1)
	})

	t.Run("blank file produces nothing", func(t *testing.T) {
		assert.Empty(t, chunkText("  \n \n"))
	})

	t.Run("large file overlapping windows", func(t *testing.T) {
		lines := make([]string, 300)
		for i := range lines {
			lines[i] = "line"
		}
		chunks := chunkText(strings.Join(lines, "\n"))
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(strings.Split(chunk, "\n")), chunkLines)
		}
	})
}

func TestIsBinary(t *testing.T) {
	assert.True(t, isBinary([]byte("abc\x00def")))
	assert.False(t, isBinary([]byte("plain text")))
}
