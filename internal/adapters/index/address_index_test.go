package index_test

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/adapters/index"
	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

func newBadgerDB(t *testing.T) *badger.DB {
	t.Helper()
	options := badger.DefaultOptions(t.TempDir())
	options.Logger = nil
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAddressIndex_UpdateAndResolve(t *testing.T) {
	store := contentstore.NewMemoryStore()
	idx := index.NewAddressIndex(store, nil)
	ctx := context.Background()

	require.NoError(t, idx.Update(ctx, "Alice@Example.com", "cid-1"))

	// Keys are normalized on both sides.
	cid, err := idx.Resolve(ctx, "alice@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "cid-1", cid)
}

func TestAddressIndex_ResolveUnknown(t *testing.T) {
	store := contentstore.NewMemoryStore()
	idx := index.NewAddressIndex(store, nil)

	_, err := idx.Resolve(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddressIndex_ReverseLookupFallback(t *testing.T) {
	store := contentstore.NewMemoryStore()
	ctx := context.Background()

	// A snapshot written before this index existed is still discoverable
	// through the store's tag search.
	cid, err := store.Write(ctx, []byte(`{"accountKey":"alice@example.com"}`),
		map[string]string{portsrepo.TagAccountKey: "alice@example.com"})
	require.NoError(t, err)

	idx := index.NewAddressIndex(store, nil)
	got, err := idx.Resolve(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, cid, got)
}

func TestAddressIndex_PersistsAcrossInstances(t *testing.T) {
	db := newBadgerDB(t)
	store := contentstore.NewMemoryStore()
	ctx := context.Background()

	idx := index.NewAddressIndex(store, db)
	require.NoError(t, idx.Update(ctx, "alice@example.com", "cid-7"))

	// A fresh index over the same database finds the persisted entry
	// without touching the content store.
	fresh := index.NewAddressIndex(contentstore.NewMemoryStore(), db)
	cid, err := fresh.Resolve(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cid-7", cid)
}
