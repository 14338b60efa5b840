package services_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
	"github.com/credexa/carbon_ledger_app/internal/core/services"
)

// memIndex is a map-backed AddressIndex for tests.
type memIndex struct {
	mu   sync.RWMutex
	cids map[string]string
}

func newMemIndex() *memIndex {
	return &memIndex{cids: make(map[string]string)}
}

func (i *memIndex) Resolve(_ context.Context, accountKey string) (string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	cid, ok := i.cids[accountKey]
	if !ok {
		return "", fmt.Errorf("account %s: %w", accountKey, apperrors.ErrNotFound)
	}
	return cid, nil
}

func (i *memIndex) Update(_ context.Context, accountKey string, cid string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cids[accountKey] = cid
	return nil
}

var _ portsrepo.AddressIndex = (*memIndex)(nil)

// newTestLedger wires a real ledger service over an in-memory content store.
func newTestLedger(secondaryGrant decimal.Decimal) (portssvc.LedgerSvcFacade, *contentstore.MemoryStore) {
	store := contentstore.NewMemoryStore()
	return services.NewLedgerService(store, nil, newMemIndex(), secondaryGrant), store
}
