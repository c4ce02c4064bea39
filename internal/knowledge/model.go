package knowledge

import "context"

// Entry is one knowledge base document. Entries are immutable at request
// time; the ingestion path is the only writer.
type Entry struct {
	ID       int64             `json:"id,omitempty"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ScoredEntry pairs an entry with its cosine similarity to a query.
type ScoredEntry struct {
	Entry
	Similarity float64 `json:"similarity"`
}

// Embedder turns text into fixed-dimension vectors. The conversation
// package's OpenAI client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever returns the entries most relevant to a query, best first.
// Implementations degrade to an empty result on provider failure; losing
// retrieval context must never abort a conversation turn.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) []ScoredEntry
}
