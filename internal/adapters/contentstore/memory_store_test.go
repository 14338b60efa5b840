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

func TestMemoryStore_WriteReadAndTagIndex(t *testing.T) {
	store := contentstore.NewMemoryStore()
	ctx := context.Background()

	blob := []byte(`{"accountKey":"alice@example.com"}`)
	cid, err := store.Write(ctx, blob, map[string]string{portsrepo.TagAccountKey: "alice@example.com"})
	require.NoError(t, err)

	got, err := store.Read(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	found, err := store.FindLatestCID(ctx, portsrepo.TagAccountKey, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, cid, found)

	_, err = store.Read(ctx, "sha256-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.FindLatestCID(ctx, portsrepo.TagAccountKey, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryStore_ReadReturnsCopy(t *testing.T) {
	store := contentstore.NewMemoryStore()
	ctx := context.Background()

	blob := []byte(`{"v":1}`)
	cid, err := store.Write(ctx, blob, nil)
	require.NoError(t, err)

	got, err := store.Read(ctx, cid)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := store.Read(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}
