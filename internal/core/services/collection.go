package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

// collection keeps a named list of records in memory and persists the whole
// list to the content store as one JSON blob on every mutation, tagged with
// the collection name so Hydrate can find the latest version after restart.
// Persistence failures keep the in-memory update (availability over
// durability) and are reported to the caller as a degraded write.
type collection[T any] struct {
	name  string
	store portsrepo.ContentStore

	mu    sync.RWMutex
	items []T
}

func newCollection[T any](name string, store portsrepo.ContentStore) *collection[T] {
	return &collection[T]{name: name, store: store}
}

// Hydrate loads the latest persisted version of the collection. A missing
// blob means the collection has never been written and is not an error.
func (c *collection[T]) Hydrate(ctx context.Context) error {
	cid, err := c.store.FindLatestCID(ctx, portsrepo.TagCollection, c.name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to locate collection %s: %w", c.name, err)
	}

	blob, err := c.store.Read(ctx, cid)
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", c.name, err)
	}

	var items []T
	if err := json.Unmarshal(blob, &items); err != nil {
		return fmt.Errorf("failed to decode collection %s: %w", c.name, err)
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// View calls fn with a read lock held over the current items. fn must not
// retain the slice.
func (c *collection[T]) View(fn func(items []T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.items)
}

// Update applies fn to a copy of the items, persists the result, and swaps
// it in. The returned error is non-nil only when fn itself fails; a persist
// failure is reported through the degraded return instead so callers can log
// it without losing the mutation.
func (c *collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) (degraded bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, len(c.items))
	copy(next, c.items)

	next, err = fn(next)
	if err != nil {
		return false, err
	}

	blob, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode collection %s: %w", c.name, err)
	}

	if _, err := c.store.Write(ctx, blob, map[string]string{portsrepo.TagCollection: c.name}); err != nil {
		degraded = true
	}

	c.items = next
	return degraded, nil
}
