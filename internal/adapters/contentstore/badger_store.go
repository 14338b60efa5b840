package contentstore

import (
	"context"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

const (
	blobKeyPrefix = "blob:"
	tagKeyPrefix  = "tag:"
)

// BadgerStore is a durable local content store backed by Badger. Blobs are
// addressed by their sha256 digest; a tag index tracks the latest CID
// written with each tag, supporting the address index's reverse lookup.
type BadgerStore struct {
	db *badger.DB
}

var _ portsrepo.ContentStore = (*BadgerStore)(nil)

// NewBadgerStore opens (creating if needed) a Badger-backed store at dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dataDir, err)
	}

	options := badger.DefaultOptions(dataDir)
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB wraps an already-open Badger database. The caller
// retains ownership of the database lifecycle.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func blobKey(cid string) []byte {
	return []byte(blobKeyPrefix + cid)
}

func tagKey(tag, value string) []byte {
	return []byte(tagKeyPrefix + tag + ":" + value)
}

// Write stores the blob under its content digest and points the tag index
// entries at it, all in one transaction.
func (s *BadgerStore) Write(_ context.Context, blob []byte, tags map[string]string) (string, error) {
	cid := DigestCID(blob)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(blobKey(cid), blob); err != nil {
			return err
		}
		for k, v := range tags {
			if err := txn.Set(tagKey(k, v), []byte(cid)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return cid, nil
}

// Read returns the blob for the given CID.
func (s *BadgerStore) Read(_ context.Context, cid string) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(cid))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("blob %s: %w", cid, apperrors.ErrNotFound)
			}
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// FindLatestCID returns the CID most recently written with the given tag.
func (s *BadgerStore) FindLatestCID(_ context.Context, tag, value string) (string, error) {
	var cid string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagKey(tag, value))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("tag %s=%s: %w", tag, value, apperrors.ErrNotFound)
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
