package domain

// ContentItem is a library entry owned by a single user.
// The dedup engine reads items, it never mutates them.
type ContentItem struct {
	ID          string
	OwnerID     string
	Content     string
	IsCanonical bool
	CanonicalID string
}

// Ref returns the item's reference view.
func (c ContentItem) Ref() ItemRef {
	return ItemRef{ID: c.ID, IsCanonical: c.IsCanonical, CanonicalID: c.CanonicalID}
}

// ItemRef is the minimal item view used for canonical resolution.
type ItemRef struct {
	ID          string
	IsCanonical bool
	CanonicalID string
}

// ResolveCanonical returns the canonical item id for this ref.
// A canonical item resolves to itself; an alias resolves to its recorded
// canonical; a ref with neither falls back to its own id. The result is
// always a canonical id, never another alias.
func (r ItemRef) ResolveCanonical() string {
	if r.IsCanonical || r.CanonicalID == "" {
		return r.ID
	}
	return r.CanonicalID
}
