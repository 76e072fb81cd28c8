package retrieval

import (
	"context"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder generates vector embeddings for texts.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query. Some models
	// optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// funcEmbedder adapts a chromem.EmbeddingFunc to the Embedder interface.
// chromem's bundled embedding functions are single-text, so documents are
// embedded one at a time.
type funcEmbedder struct {
	fn chromem.EmbeddingFunc
}

func (e *funcEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := e.fn(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

func (e *funcEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.fn(ctx, text)
}

// NewOpenAIEmbedder returns an Embedder backed by the OpenAI embeddings API.
// An empty model selects text-embedding-3-small.
func NewOpenAIEmbedder(apiKey, model string) Embedder {
	m := chromem.EmbeddingModelOpenAI3Small
	if model != "" {
		m = chromem.EmbeddingModelOpenAI(model)
	}
	return &funcEmbedder{fn: chromem.NewEmbeddingFuncOpenAI(apiKey, m)}
}
