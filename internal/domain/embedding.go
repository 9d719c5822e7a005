package domain

import (
	"context"
	"time"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// EmbeddingVector is the persisted vector record for a content item.
// Exactly one live vector exists per item: regenerating replaces, never appends.
type EmbeddingVector struct {
	ItemID     string
	Provider   string
	Model      string
	Dimensions int
	Vector     []float32
	TokenCount int
	UpdatedAt  time.Time
}
