// Package embedding persists one live vector per content item in the
// key-value store, with a per-owner index for scope queries.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/dupdex/internal/db"
	"github.com/kailas-cloud/dupdex/internal/domain"
)

// store is the consumer interface for the embedding repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the embedding store facade over Redis hashes.
type Repo struct {
	store  store
	prefix string
}

// New creates an embedding repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Upsert stores the vector for an item, replacing any previous one, and
// registers the item in the owner's vector index.
func (r *Repo) Upsert(ctx context.Context, ownerID string, vec domain.EmbeddingVector) error {
	fields := map[string]string{
		"owner":       ownerID,
		"provider":    vec.Provider,
		"model":       vec.Model,
		"dimensions":  strconv.Itoa(vec.Dimensions),
		"token_count": strconv.Itoa(vec.TokenCount),
		"updated_at":  vec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"vector":      vectorToBytes(vec.Vector),
	}

	if err := r.store.HSet(ctx, r.vecKey(vec.ItemID), fields); err != nil {
		return fmt.Errorf("upsert embedding %s: %w: %w", vec.ItemID, domain.ErrStoreUnavailable, err)
	}

	if err := r.store.SAdd(ctx, r.ownerKey(ownerID), vec.ItemID); err != nil {
		return fmt.Errorf("index embedding %s: %w: %w", vec.ItemID, domain.ErrStoreUnavailable, err)
	}

	return nil
}

// Get returns the stored vector for an item, or ErrEmbeddingNotFound.
func (r *Repo) Get(ctx context.Context, itemID string) (domain.EmbeddingVector, error) {
	m, err := r.store.HGetAll(ctx, r.vecKey(itemID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.EmbeddingVector{}, domain.ErrEmbeddingNotFound
		}
		return domain.EmbeddingVector{}, fmt.Errorf("get embedding %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	if len(m) == 0 {
		return domain.EmbeddingVector{}, domain.ErrEmbeddingNotFound
	}
	return parseFields(itemID, m), nil
}

// QueryByOwner returns all vectors in the owner's scope, minus excludeIDs.
func (r *Repo) QueryByOwner(ctx context.Context, ownerID string, excludeIDs []string) ([]domain.EmbeddingVector, error) {
	ids, err := r.store.SMembers(ctx, r.ownerKey(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list owner embeddings %s: %w: %w", ownerID, domain.ErrStoreUnavailable, err)
	}

	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	keep := ids[:0]
	for _, id := range ids {
		if _, skip := excluded[id]; !skip {
			keep = append(keep, id)
		}
	}
	if len(keep) == 0 {
		return nil, nil
	}

	keys := make([]string, len(keep))
	for i, id := range keep {
		keys[i] = r.vecKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch owner embeddings %s: %w: %w", ownerID, domain.ErrStoreUnavailable, err)
	}

	vectors := make([]domain.EmbeddingVector, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			// Stale index entry: the vector hash was deleted out of band.
			continue
		}
		vectors = append(vectors, parseFields(keep[i], m))
	}

	return vectors, nil
}

// Delete removes an item's vector and its owner-index entry.
// Deleting a vector that does not exist is not an error.
func (r *Repo) Delete(ctx context.Context, ownerID, itemID string) error {
	if err := r.store.Del(ctx, r.vecKey(itemID)); err != nil {
		return fmt.Errorf("delete embedding %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SRem(ctx, r.ownerKey(ownerID), itemID); err != nil {
		return fmt.Errorf("unindex embedding %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repo) vecKey(itemID string) string {
	return r.prefix + "emb:" + itemID
}

func (r *Repo) ownerKey(ownerID string) string {
	return r.prefix + "owner:" + ownerID + ":emb"
}

func parseFields(itemID string, m map[string]string) domain.EmbeddingVector {
	dimensions, _ := strconv.Atoi(m["dimensions"])
	tokenCount, _ := strconv.Atoi(m["token_count"])
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"])

	return domain.EmbeddingVector{
		ItemID:     itemID,
		Provider:   m["provider"],
		Model:      m["model"],
		Dimensions: dimensions,
		Vector:     bytesToVector(m["vector"]),
		TokenCount: tokenCount,
		UpdatedAt:  updatedAt,
	}
}
