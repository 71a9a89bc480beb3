package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rag-api/internal/config"
)

func TestDefaultDocuments(t *testing.T) {
	docs := DefaultDocuments()

	if len(docs) != 5 {
		t.Fatalf("expected 5 built-in documents, got %d", len(docs))
	}
	for i, d := range docs {
		if d.Position != i {
			t.Fatalf("expected position %d, got %d", i, d.Position)
		}
		if d.ID == "" {
			t.Fatalf("document %d has no ID", i)
		}
		if d.Content == "" {
			t.Fatalf("document %d has no content", i)
		}
	}
	if !strings.Contains(docs[0].Content, "Magellan") {
		t.Fatalf("expected the Magellan sentence first, got %q", docs[0].Content)
	}
}

func TestLoad_NoDirUsesDefaults(t *testing.T) {
	cfg := &config.CorpusConfig{ChunkSize: 1000, ChunkOverlap: 200}

	docs, err := Load(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("expected the built-in corpus, got %d documents", len(docs))
	}
}

func TestLoad_TextDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt": "The first document.",
		"b.txt": "The second document.",
		"c.log": "ignored, unsupported extension",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	cfg := &config.CorpusConfig{Dir: dir, ChunkSize: 1000, ChunkOverlap: 200}
	docs, err := Load(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	// WalkDir is lexical, so a.txt comes first
	if docs[0].Content != "The first document." {
		t.Fatalf("unexpected first document: %q", docs[0].Content)
	}
	for i, d := range docs {
		if d.Position != i {
			t.Fatalf("expected position %d, got %d", i, d.Position)
		}
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	cfg := &config.CorpusConfig{Dir: t.TempDir(), ChunkSize: 1000, ChunkOverlap: 200}
	if _, err := Load(cfg); err == nil {
		t.Fatal("expected error for directory with no documents")
	}
}

func TestChunkContent_ShortContentSingleChunk(t *testing.T) {
	chunks := chunkContent("short text", 100, 20)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "short text" {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunkContent_SplitsWithOverlap(t *testing.T) {
	content := strings.Repeat("word ", 100) // 500 chars
	chunks := chunkContent(content, 120, 30)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) > 120 {
			t.Fatalf("chunk %d exceeds max size: %d chars", i, len(ch))
		}
	}
}

func TestChunkContent_EmptyInput(t *testing.T) {
	if chunks := chunkContent("   ", 100, 10); chunks != nil {
		t.Fatalf("expected no chunks for blank input, got %v", chunks)
	}
	if chunks := chunkContent("text", 0, 0); chunks != nil {
		t.Fatalf("expected no chunks for zero max size, got %v", chunks)
	}
}

func TestMarkdownToText(t *testing.T) {
	src := []byte("# Heading\n\nSome *emphasised* text.\n\n- item one\n- item two\n")

	text, err := markdownToText(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Heading", "emphasised", "item one", "item two"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in extracted text, got %q", want, text)
		}
	}
	if strings.Contains(text, "#") || strings.Contains(text, "*") {
		t.Fatalf("expected markup to be stripped, got %q", text)
	}
}
