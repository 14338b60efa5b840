package repositories

import "context"

// TagAccountKey is the metadata tag under which account snapshots are
// indexed in the content store, enabling the reverse lookup the address
// index performs on a cache miss.
const TagAccountKey = "accountKey"

// TagCollection is the metadata tag under which named collection blobs
// (listings, orders, tickets) are indexed.
const TagCollection = "collection"

// TagExternalID is the metadata tag carrying the upstream user id an
// account was linked to, enabling lookup by that id.
const TagExternalID = "externalID"

// ContentStore persists immutable JSON blobs addressed by content id.
//
// Write returns the CID of the stored blob. Read returns ErrNotFound when no
// source produces the blob within the bounded timeout. Both return
// ErrStorageUnavailable when the backing service cannot be reached; callers
// are expected to degrade to a volatile store rather than fail.
type ContentStore interface {
	Write(ctx context.Context, blob []byte, tags map[string]string) (string, error)
	Read(ctx context.Context, cid string) ([]byte, error)

	// FindLatestCID searches the store's own metadata for the most recently
	// written blob carrying the given tag, returning ErrNotFound when the
	// tag has never been written.
	FindLatestCID(ctx context.Context, tagKey, tagValue string) (string, error)
}
