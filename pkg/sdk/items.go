package dupdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// ItemService manages content items of a single owner.
type ItemService struct {
	ownerID string
	svc     itemUseCase
	obs     *observer
}

// Create stores a new canonical item, generating and persisting its
// embedding. Fails with ErrInvalidRequest on empty content.
func (s *ItemService) Create(ctx context.Context, content string) (_ Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe("item.create", start, err) }()

	it, err := s.svc.Create(ctx, s.ownerID, content)
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	return fromInternalItem(it), nil
}

// Get retrieves an item by ID. Items of other owners are reported as
// not found.
func (s *ItemService) Get(ctx context.Context, itemID string) (_ Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe("item.get", start, err) }()

	it, err := s.svc.Get(ctx, itemID)
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	if it.OwnerID != s.ownerID {
		err = fmt.Errorf("get item: %w", domain.ErrItemNotFound)
		return Item{}, err
	}
	return fromInternalItem(it), nil
}

// Delete removes an item and its stored vector. Deleting a missing item
// is not an error.
func (s *ItemService) Delete(ctx context.Context, itemID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("item.delete", start, err) }()

	if err = s.svc.Delete(ctx, s.ownerID, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
