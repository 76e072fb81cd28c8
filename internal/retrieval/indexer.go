package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxFileSize caps files read during indexing. Source files beyond
	// this are almost always generated.
	maxFileSize = 512 * 1024

	// chunkLines is the chunk height in lines, chunkOverlap the lines
	// repeated between adjacent chunks so context survives the split.
	chunkLines   = 120
	chunkOverlap = 20

	// indexBatchSize bounds how many chunks are embedded per Add call.
	indexBatchSize = 32
)

// skipDirs are directory names never worth indexing.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"target":       true,
}

// IndexStats summarizes one indexing run.
type IndexStats struct {
	Files   int
	Chunks  int
	Skipped int
}

// Indexer walks a repository directory and loads its source files into a
// Store.
type Indexer struct {
	store  *Store
	logger *zap.Logger
}

// NewIndexer creates an Indexer writing to store.
func NewIndexer(store *Store, logger *zap.Logger) (*Indexer, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{store: store, logger: logger.Named("indexer")}, nil
}

// IndexDirectory indexes every text file under root. Binary files,
// oversized files, and well-known dependency directories are skipped.
// Paths stored with each chunk are relative to root.
func (ix *Indexer) IndexDirectory(ctx context.Context, root string) (IndexStats, error) {
	var stats IndexStats
	batch := make([]IndexedDocument, 0, indexBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := ix.store.Add(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileSize {
			stats.Skipped++
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if len(content) == 0 || isBinary(content) {
			stats.Skipped++
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		stats.Files++
		for i, chunk := range chunkText(string(content)) {
			batch = append(batch, IndexedDocument{
				ID:      fmt.Sprintf("%s#%d", rel, i),
				Path:    rel,
				Content: chunk,
			})
			stats.Chunks++
			if len(batch) >= indexBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}

	ix.logger.Info("indexed directory",
		zap.String("root", root),
		zap.Int("files", stats.Files),
		zap.Int("chunks", stats.Chunks),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// isBinary reports whether content looks like a binary file. A NUL byte in
// the first KBs is the usual tell.
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// chunkText splits text into overlapping line windows. Small files come
// back as a single chunk.
func chunkText(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) <= chunkLines {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	step := chunkLines - chunkOverlap
	for start := 0; start < len(lines); start += step {
		end := start + chunkLines
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(lines) {
			break
		}
	}
	return chunks
}
