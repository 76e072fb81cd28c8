package retrieval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codescout/internal/research"
)

var (
	// ErrInvalidConfig indicates the store configuration is invalid.
	ErrInvalidConfig = errors.New("invalid store config")

	// ErrEmptyDocuments indicates an Add call with no documents.
	ErrEmptyDocuments = errors.New("no documents provided")

	// ErrEmbeddingFailed indicates the embedder could not embed a batch.
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// timeNow is a variable so tests can pin document ID generation.
var timeNow = time.Now

const (
	defaultCollection = "codescout"
	defaultTopK       = 10
)

// StoreConfig holds configuration for the embedded vector store.
type StoreConfig struct {
	// Path is the directory for persistent storage. Empty keeps the
	// database in memory.
	Path string

	// Collection is the collection name. Default: "codescout".
	Collection string

	// TopK is the number of chunks returned per query. Default: 10.
	TopK int

	// Compress enables gzip compression for persisted data.
	Compress bool
}

// ApplyDefaults sets default values for unset fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = defaultCollection
	}
	if c.TopK == 0 {
		c.TopK = defaultTopK
	}
}

// Validate validates the configuration.
func (c *StoreConfig) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	}
	return nil
}

// IndexedDocument is one code chunk to be stored.
type IndexedDocument struct {
	ID      string
	Path    string
	Content string
}

// Store wraps a chromem-go database holding indexed code chunks. It
// implements research.Retriever.
type Store struct {
	db       *chromem.DB
	embedder Embedder
	config   StoreConfig
	logger   *zap.Logger
}

var _ research.Retriever = (*Store)(nil)

// NewStore creates a Store with the given configuration. A non-empty
// config.Path opens a persistent database under that directory.
func NewStore(config StoreConfig, embedder Embedder, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	var (
		db  *chromem.DB
		err error
	)
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(config.Path, 0o700); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", config.Path, err)
		}
		db, err = chromem.NewPersistentDB(config.Path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening vector database: %w", err)
		}
	}

	logger.Info("vector store initialized",
		zap.String("path", config.Path),
		zap.String("collection", config.Collection),
		zap.Int("top_k", config.TopK),
	)

	return &Store{
		db:       db,
		embedder: embedder,
		config:   config,
		logger:   logger.Named("retrieval"),
	}, nil
}

// embeddingFunc adapts the store's embedder for chromem query embedding.
func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

func (s *Store) collection() (*chromem.Collection, error) {
	collection, err := s.db.GetOrCreateCollection(s.config.Collection, nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", s.config.Collection, err)
	}
	return collection, nil
}

// Add embeds and stores a batch of code chunks. Documents without an ID get
// a generated one.
func (s *Store) Add(ctx context.Context, docs []IndexedDocument) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	collection, err := s.collection()
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(docs))
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		if ids[i] == "" {
			ids[i] = fmt.Sprintf("doc_%d_%d", timeNow().UnixNano(), i)
		}
		texts[i] = doc.Content
	}

	// Embeddings are computed in one batch so embedders can exploit
	// their own batching.
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(docs) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d documents", ErrEmbeddingFailed, len(embeddings), len(docs))
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        ids[i],
			Content:   doc.Content,
			Metadata:  map[string]string{"path": doc.Path},
			Embedding: embeddings[i],
		}
	}

	if err := collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}

	s.logger.Debug("added documents",
		zap.String("collection", s.config.Collection),
		zap.Int("count", len(docs)),
	)
	return ids, nil
}

// Close releases the store. chromem persists synchronously on every write,
// so there is nothing to flush; Close exists for callers that manage the
// store through an io.Closer.
func (s *Store) Close() error {
	return nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() (int, error) {
	collection, err := s.collection()
	if err != nil {
		return 0, err
	}
	return collection.Count(), nil
}

// Retrieve implements research.Retriever. The language parameter exists for
// retrievers that shard by language; the embedded store searches everything
// and ignores it. An empty index returns no documents and no error.
func (s *Store) Retrieve(ctx context.Context, query, language string) ([]research.Document, error) {
	_ = language

	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidConfig)
	}

	collection, err := s.collection()
	if err != nil {
		return nil, err
	}

	// chromem requires nResults <= document count.
	k := s.config.TopK
	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	docs := make([]research.Document, len(results))
	for i, r := range results {
		docs[i] = research.Document{
			Content: r.Content,
			Path:    r.Metadata["path"],
			Score:   r.Similarity,
		}
	}

	s.logger.Debug("retrieved documents",
		zap.String("query", query),
		zap.Int("results", len(docs)),
	)
	return docs, nil
}
