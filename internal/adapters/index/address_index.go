package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
	"github.com/credexa/carbon_ledger_app/internal/middleware"
)

const indexKeyPrefix = "index:"

// AddressIndex maps account keys to the CID of their latest snapshot. The
// in-process map is the primary cache; every update is written through to
// Badger so the index survives restart, and a miss falls back to the
// content store's tag search before concluding the account has no history.
type AddressIndex struct {
	mu    sync.RWMutex
	cids  map[string]string
	db    *badger.DB // optional write-through persistence
	store portsrepo.ContentStore
}

var _ portsrepo.AddressIndex = (*AddressIndex)(nil)

// NewAddressIndex creates an address index backed by the given content
// store for reverse lookups. db may be nil, in which case the index is
// purely in-process.
func NewAddressIndex(store portsrepo.ContentStore, db *badger.DB) *AddressIndex {
	return &AddressIndex{
		cids:  make(map[string]string),
		db:    db,
		store: store,
	}
}

func indexKey(accountKey string) []byte {
	return []byte(indexKeyPrefix + accountKey)
}

// Resolve returns the latest CID for the account, consulting the in-process
// map, then the persisted index, then the content store's tag search.
// Returns ErrNotFound when the account has no history anywhere; reverse
// lookup failures are treated the same way.
func (i *AddressIndex) Resolve(ctx context.Context, accountKey string) (string, error) {
	accountKey = domain.NormalizeAccountKey(accountKey)

	i.mu.RLock()
	cid, ok := i.cids[accountKey]
	i.mu.RUnlock()
	if ok {
		return cid, nil
	}

	if cid, err := i.resolvePersisted(accountKey); err == nil {
		i.mu.Lock()
		i.cids[accountKey] = cid
		i.mu.Unlock()
		return cid, nil
	}

	// Best-effort reverse lookup: the primary map is a cache over a store
	// that supports tag search. Failures here mean "no balance yet".
	cid, err := i.store.FindLatestCID(ctx, portsrepo.TagAccountKey, accountKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Warn("Address index reverse lookup failed",
				slog.String("account_key", accountKey),
				slog.String("error", err.Error()))
		}
		return "", fmt.Errorf("account %s: %w", accountKey, apperrors.ErrNotFound)
	}

	i.mu.Lock()
	i.cids[accountKey] = cid
	i.mu.Unlock()
	return cid, nil
}

func (i *AddressIndex) resolvePersisted(accountKey string) (string, error) {
	if i.db == nil {
		return "", apperrors.ErrNotFound
	}
	var cid string
	err := i.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(accountKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return apperrors.ErrNotFound
			}
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		cid = string(val)
		return nil
	})
	if err != nil {
		return "", err
	}
	return cid, nil
}

// Update points the account at a new latest CID. The in-process map is
// updated first so readers never see a stale entry after a successful
// write; persistence failures are surfaced to the caller.
func (i *AddressIndex) Update(ctx context.Context, accountKey string, cid string) error {
	accountKey = domain.NormalizeAccountKey(accountKey)

	i.mu.Lock()
	i.cids[accountKey] = cid
	i.mu.Unlock()

	if i.db == nil {
		return nil
	}
	err := i.db.Update(func(txn *badger.Txn) error {
		return txn.Set(indexKey(accountKey), []byte(cid))
	})
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to persist address index entry",
			slog.String("account_key", accountKey),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist index entry for %s: %w", accountKey, err)
	}
	return nil
}
