package dupdex

import "context"

// Embedder converts text to vector embeddings.
// Required for item creation and semantic search; duplicate checks degrade
// to the exact and structural stages without one.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
