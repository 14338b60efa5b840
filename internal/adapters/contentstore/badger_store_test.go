package contentstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

func newBadgerStore(t *testing.T) *contentstore.BadgerStore {
	t.Helper()
	store, err := contentstore.NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore_WriteRead(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()

	blob := []byte(`{"accountKey":"alice@example.com"}`)
	cid, err := store.Write(ctx, blob, map[string]string{portsrepo.TagAccountKey: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, contentstore.DigestCID(blob), cid)

	got, err := store.Read(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestBadgerStore_ReadMissing(t *testing.T) {
	store := newBadgerStore(t)

	_, err := store.Read(context.Background(), "sha256-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBadgerStore_FindLatestCID(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()

	first := []byte(`{"v":1}`)
	second := []byte(`{"v":2}`)
	tags := map[string]string{portsrepo.TagAccountKey: "alice@example.com"}

	_, err := store.Write(ctx, first, tags)
	require.NoError(t, err)
	secondCID, err := store.Write(ctx, second, tags)
	require.NoError(t, err)

	// The tag index points at the most recent write.
	cid, err := store.FindLatestCID(ctx, portsrepo.TagAccountKey, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, secondCID, cid)
}

func TestBadgerStore_FindLatestCIDMissing(t *testing.T) {
	store := newBadgerStore(t)

	_, err := store.FindLatestCID(context.Background(), portsrepo.TagAccountKey, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := contentstore.NewBadgerStore(dir)
	require.NoError(t, err)

	blob := []byte(`{"accountKey":"alice@example.com","tokenBalance":"5"}`)
	cid, err := store.Write(ctx, blob, map[string]string{portsrepo.TagAccountKey: "alice@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := contentstore.NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}
