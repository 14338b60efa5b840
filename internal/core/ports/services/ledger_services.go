package services

import (
	"context"

	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade owns the semantics of account balance snapshots: reading
// the latest snapshot and applying balance deltas.
type LedgerSvcFacade interface {
	// GetSnapshot resolves the latest snapshot for the account, returning a
	// fresh default snapshot (zero tokens, the secondary-currency grant)
	// when the account has no history or the store read fails.
	GetSnapshot(ctx context.Context, accountKey string) (*domain.BalanceSnapshot, error)

	// GetSnapshotByExternalID resolves an account through the externalID
	// metadata carried on snapshots.
	GetSnapshotByExternalID(ctx context.Context, externalID string) (*domain.BalanceSnapshot, error)

	// ApplyDelta applies a signed token/secondary delta to the account,
	// appending a transaction record and persisting a new snapshot. It
	// creates the account on first use and never fails with NotFound.
	// Calls for the same account key are serialized.
	ApplyDelta(ctx context.Context, accountKey string, tokenDelta, secondaryDelta decimal.Decimal, prov domain.Provenance) (*domain.BalanceSnapshot, error)

	// SetExternalRefs records externalID/externalWallet metadata for the
	// account, first-write-wins: existing values are never overwritten.
	SetExternalRefs(ctx context.Context, accountKey, externalID, externalWallet string) (*domain.BalanceSnapshot, error)
}
