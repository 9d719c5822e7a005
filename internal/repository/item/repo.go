// Package item persists content items and the indexes the duplicate
// cascade queries: a per-owner item set and a normalized-content
// exact-match index.
package item

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// store is the consumer interface for the item repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the item storage collaborator over Redis hashes and sets.
type Repo struct {
	store  store
	prefix string
}

// New creates an item repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Put stores a content item and maintains the owner and exact-match indexes.
func (r *Repo) Put(ctx context.Context, item domain.ContentItem) error {
	normalized := domain.NormalizeContent(item.Content)

	fields := map[string]string{
		"owner":           item.OwnerID,
		"content":         item.Content,
		"normalized_hash": contentHash(normalized),
		"is_canonical":    strconv.FormatBool(item.IsCanonical),
		"canonical_id":    item.CanonicalID,
	}

	if err := r.store.HSet(ctx, r.itemKey(item.ID), fields); err != nil {
		return fmt.Errorf("put item %s: %w: %w", item.ID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SAdd(ctx, r.ownerKey(item.OwnerID), item.ID); err != nil {
		return fmt.Errorf("index item %s: %w: %w", item.ID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SAdd(ctx, r.exactKey(item.OwnerID, normalized), item.ID); err != nil {
		return fmt.Errorf("index exact %s: %w: %w", item.ID, domain.ErrStoreUnavailable, err)
	}

	return nil
}

// Get returns an item by id, or ErrItemNotFound.
func (r *Repo) Get(ctx context.Context, itemID string) (domain.ContentItem, error) {
	m, err := r.store.HGetAll(ctx, r.itemKey(itemID))
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("get item %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	if len(m) == 0 {
		return domain.ContentItem{}, domain.ErrItemNotFound
	}
	return parseItem(itemID, m), nil
}

// FindExactMatches returns refs of items whose normalized content equals
// normalizedContent within the owner's scope.
func (r *Repo) FindExactMatches(ctx context.Context, ownerID, normalizedContent string) ([]domain.ItemRef, error) {
	ids, err := r.store.SMembers(ctx, r.exactKey(ownerID, normalizedContent))
	if err != nil {
		return nil, fmt.Errorf("exact match lookup: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	items, err := r.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.ItemRef, len(items))
	for i, it := range items {
		refs[i] = it.Ref()
	}
	return refs, nil
}

// ListOwnerItems returns up to limit items in the owner's scope, ordered by
// id for deterministic pools. limit <= 0 means no limit.
func (r *Repo) ListOwnerItems(ctx context.Context, ownerID string, limit int) ([]domain.ContentItem, error) {
	ids, err := r.store.SMembers(ctx, r.ownerKey(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list owner items %s: %w: %w", ownerID, domain.ErrStoreUnavailable, err)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return r.fetch(ctx, ids)
}

// Delete removes an item and all its index entries. Idempotent.
func (r *Repo) Delete(ctx context.Context, itemID string) error {
	item, err := r.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil
		}
		return err
	}

	normalized := domain.NormalizeContent(item.Content)
	if err := r.store.SRem(ctx, r.exactKey(item.OwnerID, normalized), itemID); err != nil {
		return fmt.Errorf("unindex exact %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SRem(ctx, r.ownerKey(item.OwnerID), itemID); err != nil {
		return fmt.Errorf("unindex item %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	if err := r.store.Del(ctx, r.itemKey(itemID)); err != nil {
		return fmt.Errorf("delete item %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *Repo) fetch(ctx context.Context, ids []string) ([]domain.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w: %w", domain.ErrStoreUnavailable, err)
	}

	items := make([]domain.ContentItem, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		items = append(items, parseItem(ids[i], m))
	}
	return items, nil
}

func (r *Repo) itemKey(itemID string) string {
	return r.prefix + "item:" + itemID
}

func (r *Repo) ownerKey(ownerID string) string {
	return r.prefix + "owner:" + ownerID + ":items"
}

func (r *Repo) exactKey(ownerID, normalized string) string {
	return r.prefix + "exact:" + ownerID + ":" + contentHash(normalized)
}

func contentHash(normalized string) string {
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])
}

func parseItem(id string, m map[string]string) domain.ContentItem {
	isCanonical, _ := strconv.ParseBool(m["is_canonical"])
	return domain.ContentItem{
		ID:          id,
		OwnerID:     m["owner"],
		Content:     m["content"],
		IsCanonical: isCanonical,
		CanonicalID: m["canonical_id"],
	}
}
