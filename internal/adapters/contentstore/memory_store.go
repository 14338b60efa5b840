package contentstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

// MemoryStore is a volatile in-process content store. It backs tests and
// serves as the fallback cache when the durable store is unreachable;
// everything in it is lost on process restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	tags  map[string]string // "tagKey\x00tagValue" -> latest CID
}

var _ portsrepo.ContentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty volatile content store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
		tags:  make(map[string]string),
	}
}

func tagIndexKey(tagKey, tagValue string) string {
	return tagKey + "\x00" + tagValue
}

// Write stores the blob under its content digest and updates the tag index.
func (s *MemoryStore) Write(_ context.Context, blob []byte, tags map[string]string) (string, error) {
	cid := DigestCID(blob)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[cid] = stored
	for k, v := range tags {
		s.tags[tagIndexKey(k, v)] = cid
	}
	return cid, nil
}

// Read returns the blob for the given CID.
func (s *MemoryStore) Read(_ context.Context, cid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[cid]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", cid, apperrors.ErrNotFound)
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// FindLatestCID returns the CID most recently written with the given tag.
func (s *MemoryStore) FindLatestCID(_ context.Context, tagKey, tagValue string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cid, ok := s.tags[tagIndexKey(tagKey, tagValue)]
	if !ok {
		return "", fmt.Errorf("tag %s=%s: %w", tagKey, tagValue, apperrors.ErrNotFound)
	}
	return cid, nil
}
