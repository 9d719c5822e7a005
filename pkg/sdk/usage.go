package dupdex

import (
	"context"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// TokenUsage accumulates embedding token consumption across calls made
// with the context returned by ContextWithUsage. A cache hit marks the
// usage as used with zero tokens.
type TokenUsage struct {
	inner *domain.EmbeddingUsage
}

// Tokens returns the total tokens consumed so far.
func (u *TokenUsage) Tokens() int {
	return u.inner.TotalTokens
}

// Used reports whether any embedding call happened.
func (u *TokenUsage) Used() bool {
	return u.inner.Used
}

// ContextWithUsage returns a context that collects embedding token usage.
// Pass the returned context to Create, Check or Query calls and read the
// collector afterwards:
//
//	ctx, usage := dupdex.ContextWithUsage(ctx)
//	client.Items("user-1").Create(ctx, content)
//	fmt.Println(usage.Tokens())
func ContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	ctx, u := domain.NewContextWithUsage(ctx)
	return ctx, &TokenUsage{inner: u}
}
