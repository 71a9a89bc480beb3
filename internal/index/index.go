package index

import (
	"context"
	"fmt"

	"rag-api/internal/embedding"
	"rag-api/internal/models"

	"github.com/tmc/langchaingo/embeddings"
)

// Index is a nearest-neighbor structure over the fixed corpus. Implementations
// are loaded once at startup and only read afterwards, so Search needs no
// locking against Add.
type Index interface {
	// Add inserts documents with their precomputed unit-length embeddings.
	Add(ctx context.Context, docs []models.Document, vectors [][]float32) error
	// Search returns up to k documents ordered by descending cosine similarity.
	Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
}

// Build embeds every corpus document and loads the index. Any embedding
// failure is returned to the caller, which treats it as fatal at startup.
func Build(ctx context.Context, embedder embeddings.Embedder, idx Index, docs []models.Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("corpus is empty")
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := embedding.EmbedDocuments(ctx, embedder, texts)
	if err != nil {
		return err
	}
	if err := idx.Add(ctx, docs, vectors); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	return nil
}
