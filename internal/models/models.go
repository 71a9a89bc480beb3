package models

// Document is one corpus entry. The corpus is fixed at startup and never
// mutated, so Position doubles as a stable identifier within a run.
type Document struct {
	ID       string
	Position int
	Content  string
}

// Chunk is a piece of a parsed source file before it becomes a Document
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// SearchResult pairs a document with its cosine similarity to the query
type SearchResult struct {
	Document   Document
	Similarity float32
}

// Answer is the response of one pipeline invocation
type Answer struct {
	RetrievedDocs []string `json:"retrieved_docs"`
	Response      string   `json:"response"`
}
