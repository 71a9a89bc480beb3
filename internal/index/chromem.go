package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"rag-api/internal/models"

	"github.com/philippgille/chromem-go"
)

const collectionName = "corpus"

// MemoryIndex is the default in-process index, backed by a chromem-go
// collection. Embeddings are always supplied precomputed, so the collection
// never calls out to an embedding function of its own.
type MemoryIndex struct {
	collection *chromem.Collection
}

func NewMemoryIndex() (*MemoryIndex, error) {
	db := chromem.NewDB()
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}
	return &MemoryIndex{collection: c}, nil
}

func (m *MemoryIndex) Add(ctx context.Context, docs []models.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("got %d documents but %d vectors", len(docs), len(vectors))
	}
	cdocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		cdocs[i] = chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  map[string]string{"position": strconv.Itoa(d.Position)},
			Embedding: vectors[i],
		}
	}
	if err := m.collection.AddDocuments(ctx, cdocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	n := m.collection.Count()
	if n == 0 {
		return nil, nil
	}
	// chromem rejects k larger than the collection
	if k > n {
		k = n
	}
	results, err := m.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	out := make([]models.SearchResult, len(results))
	for i, res := range results {
		pos, err := strconv.Atoi(res.Metadata["position"])
		if err != nil {
			return nil, fmt.Errorf("bad position metadata on %s: %v", res.ID, err)
		}
		out[i] = models.SearchResult{
			Document: models.Document{
				ID:       res.ID,
				Position: pos,
				Content:  res.Content,
			},
			Similarity: res.Similarity,
		}
	}
	return out, nil
}

func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	return m.collection.Count(), nil
}
