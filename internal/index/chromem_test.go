package index

import (
	"context"
	"testing"

	"rag-api/internal/models"
)

func testDocs() ([]models.Document, [][]float32) {
	docs := []models.Document{
		{ID: "a", Position: 0, Content: "doc a"},
		{ID: "b", Position: 1, Content: "doc b"},
		{ID: "c", Position: 2, Content: "doc c"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return docs, vectors
}

func newTestIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("creating index: %v", err)
	}
	return idx
}

func TestMemoryIndex_SearchOrder(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	docs, vectors := testDocs()
	if err := idx.Add(ctx, docs, vectors); err != nil {
		t.Fatalf("adding documents: %v", err)
	}

	// closest to a, then b, then c
	results, err := idx.Search(ctx, []float32{0.8, 0.6, 0}, 3)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Document.Position != 0 {
		t.Fatalf("expected document 0 first, got %d", results[0].Document.Position)
	}
	if results[1].Document.Position != 1 {
		t.Fatalf("expected document 1 second, got %d", results[1].Document.Position)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Fatalf("results not in descending similarity order: %v", results)
		}
	}
	if results[0].Document.Content != "doc a" {
		t.Fatalf("expected content to round-trip, got %q", results[0].Document.Content)
	}
}

func TestMemoryIndex_ClampsK(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	docs, vectors := testDocs()
	if err := idx.Add(ctx, docs, vectors); err != nil {
		t.Fatalf("adding documents: %v", err)
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("searching with k > corpus size: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestMemoryIndex_LengthMismatch(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	docs, _ := testDocs()

	if err := idx.Add(ctx, docs, [][]float32{{1, 0, 0}}); err == nil {
		t.Fatal("expected error for mismatched docs and vectors")
	}
}

func TestMemoryIndex_Count(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	docs, vectors := testDocs()
	if err := idx.Add(ctx, docs, vectors); err != nil {
		t.Fatalf("adding documents: %v", err)
	}

	n, err := idx.Count(ctx)
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected count 3, got %d", n)
	}
}
