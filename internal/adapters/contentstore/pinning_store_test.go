package contentstore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

func newPinningStore(apiURL string, gateways ...string) *contentstore.PinningStore {
	return contentstore.NewPinningStore(contentstore.PinningConfig{
		APIURL:         apiURL,
		APIKey:         "key",
		APISecret:      "secret",
		Gateways:       gateways,
		GatewayTimeout: 2 * time.Second,
	})
}

func TestPinningStore_Write(t *testing.T) {
	var gotAuth, gotTag string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		gotAuth = r.Header.Get("pinata_api_key")

		var req struct {
			PinataContent  json.RawMessage `json:"pinataContent"`
			PinataMetadata struct {
				KeyValues map[string]string `json:"keyvalues"`
			} `json:"pinataMetadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTag = req.PinataMetadata.KeyValues[portsrepo.TagAccountKey]

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmTest123"})
	}))
	defer api.Close()

	store := newPinningStore(api.URL)
	cid, err := store.Write(context.Background(),
		[]byte(`{"accountKey":"alice@example.com"}`),
		map[string]string{portsrepo.TagAccountKey: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "QmTest123", cid)
	assert.Equal(t, "key", gotAuth)
	assert.Equal(t, "alice@example.com", gotTag)
}

func TestPinningStore_WriteRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmAfterRetry"})
	}))
	defer api.Close()

	store := newPinningStore(api.URL)
	cid, err := store.Write(context.Background(), []byte(`{}`), nil)

	require.NoError(t, err)
	assert.Equal(t, "QmAfterRetry", cid)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPinningStore_WriteRejectionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer api.Close()

	store := newPinningStore(api.URL)
	_, err := store.Write(context.Background(), []byte(`{}`), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPinningStore_WriteUnconfigured(t *testing.T) {
	store := newPinningStore("")
	_, err := store.Write(context.Background(), []byte(`{}`), nil)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestPinningStore_ReadRacesGateways(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"from":"slow"}`))
	}))
	defer slow.Close()

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ipfs/QmTest123", r.URL.Path)
		w.Write([]byte(`{"from":"fast"}`))
	}))
	defer fast.Close()

	store := newPinningStore("", slow.URL, fast.URL)
	blob, err := store.Read(context.Background(), "QmTest123")

	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"fast"}`, string(blob))
}

func TestPinningStore_ReadAllGatewaysFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failing.Close()

	store := newPinningStore("", failing.URL)
	_, err := store.Read(context.Background(), "QmMissing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPinningStore_FindLatestCID(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/pinList", r.URL.Path)
		require.Equal(t, "pinned", r.URL.Query().Get("status"))
		require.NotEmpty(t, r.URL.Query().Get("metadata[keyvalues][accountKey]"))

		json.NewEncoder(w).Encode(map[string]any{
			"rows": []map[string]string{{"ipfs_pin_hash": "QmLatest"}},
		})
	}))
	defer api.Close()

	store := newPinningStore(api.URL)
	cid, err := store.FindLatestCID(context.Background(), portsrepo.TagAccountKey, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "QmLatest", cid)
}

func TestPinningStore_FindLatestCIDEmpty(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"rows": []map[string]string{}})
	}))
	defer api.Close()

	store := newPinningStore(api.URL)
	_, err := store.FindLatestCID(context.Background(), portsrepo.TagAccountKey, "nobody@example.com")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
