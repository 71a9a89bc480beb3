package rag

import (
	"context"
	"fmt"
	"strings"

	"rag-api/internal/config"
	"rag-api/internal/embedding"
	"rag-api/internal/index"
	"rag-api/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

// Generator is the outbound text-generation call.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RAG turns a free-text query into a generated answer grounded in the most
// relevant corpus documents. It holds only read-only state, so one instance
// serves concurrent requests.
type RAG struct {
	embedder  embeddings.Embedder
	index     index.Index
	generator Generator
	topK      int
	threshold float64
}

func NewRAG(embedder embeddings.Embedder, idx index.Index, generator Generator, cfg *config.RetrievalConfig) *RAG {
	return &RAG{
		embedder:  embedder,
		index:     idx,
		generator: generator,
		topK:      cfg.TopK,
		threshold: cfg.Threshold,
	}
}

// Query runs the full pipeline: embed, search, filter, prompt, generate.
// Upstream failures are returned unwrapped into the generic error path; the
// no-document-clears-the-threshold case is not an error, the single nearest
// document is kept instead.
func (r *RAG) Query(ctx context.Context, query string) (*models.Answer, error) {
	vec, err := embedding.EmbedQuery(ctx, r.embedder, query)
	if err != nil {
		return nil, err
	}

	results, err := r.index.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("index returned no documents")
	}

	relevant := Filter(results, r.threshold)
	log.Debug().
		Int("candidates", len(results)).
		Int("relevant", len(relevant)).
		Float32("best", results[0].Similarity).
		Msg("Retrieved documents")

	docs := make([]string, len(relevant))
	for i, res := range relevant {
		docs[i] = res.Document.Content
	}

	prompt := fmt.Sprintf(models.AnswerPromptTemplate, query, strings.Join(docs, " "))
	response, err := r.generator.Generate(ctx, models.SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &models.Answer{
		RetrievedDocs: docs,
		Response:      strings.TrimSpace(response),
	}, nil
}

// Filter keeps the candidates whose similarity exceeds threshold, preserving
// search order. When none qualifies it falls back to the single nearest
// candidate, so at least one document always reaches the prompt.
func Filter(results []models.SearchResult, threshold float64) []models.SearchResult {
	var kept []models.SearchResult
	for _, res := range results {
		if float64(res.Similarity) > threshold {
			kept = append(kept, res)
		}
	}
	if len(kept) == 0 && len(results) > 0 {
		kept = results[:1]
	}
	return kept
}
