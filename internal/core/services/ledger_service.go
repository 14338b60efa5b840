package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
)

// minSignatureLen is the minimum accepted length for the opaque admin
// signature carried on balance mutations. The signature is stored as
// provenance, not verified cryptographically.
const minSignatureLen = 16

func checkSignature(signature string) error {
	if len(signature) < minSignatureLen {
		return fmt.Errorf("signature must be at least %d characters: %w", minSignatureLen, apperrors.ErrInvalidSignature)
	}
	return nil
}

// LedgerService implements LedgerSvcFacade over a content-addressed store
// and an address index. Mutations for the same account are serialized; when
// the durable store is unreachable, writes land in the volatile fallback
// and the resulting snapshot is flagged degraded.
type LedgerService struct {
	BaseService
	store          portsrepo.ContentStore
	fallback       portsrepo.ContentStore
	idx            portsrepo.AddressIndex
	secondaryGrant decimal.Decimal
	locks          *keyedMutex
}

var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// NewLedgerService creates a new ledger service. fallback receives writes
// when store is unreachable and may be nil to disable degraded writes.
func NewLedgerService(store, fallback portsrepo.ContentStore, idx portsrepo.AddressIndex, secondaryGrant decimal.Decimal) *LedgerService {
	return &LedgerService{
		store:          store,
		fallback:       fallback,
		idx:            idx,
		secondaryGrant: secondaryGrant,
		locks:          newKeyedMutex(),
	}
}

// GetSnapshot resolves the latest snapshot for the account. Unknown
// accounts get a fresh default snapshot; a resolvable account whose blob
// cannot be read gets a default snapshot flagged degraded, so readers are
// never blocked on store health.
func (s *LedgerService) GetSnapshot(ctx context.Context, accountKey string) (*domain.BalanceSnapshot, error) {
	accountKey = domain.NormalizeAccountKey(accountKey)
	return s.loadSnapshot(ctx, accountKey)
}

func (s *LedgerService) loadSnapshot(ctx context.Context, accountKey string) (*domain.BalanceSnapshot, error) {
	cid, err := s.idx.Resolve(ctx, accountKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewSnapshot(accountKey, s.secondaryGrant), nil
		}
		s.LogError(ctx, err, "Failed to resolve account", "account_key", accountKey)
		return nil, fmt.Errorf("failed to resolve account %s: %w", accountKey, apperrors.ErrInternal)
	}

	blob, err := s.store.Read(ctx, cid)
	if err != nil {
		if s.fallback != nil {
			if fb, fbErr := s.fallback.Read(ctx, cid); fbErr == nil {
				blob = fb
			}
		}
		if blob == nil {
			s.LogWarn(ctx, "Snapshot unreadable, serving degraded default",
				"account_key", accountKey, "cid", cid, "error", err.Error())
			snapshot := domain.NewSnapshot(accountKey, s.secondaryGrant)
			snapshot.Degraded = true
			return snapshot, nil
		}
	}

	var snapshot domain.BalanceSnapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		s.LogError(ctx, err, "Failed to decode snapshot", "account_key", accountKey, "cid", cid)
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", cid, apperrors.ErrInternal)
	}
	return &snapshot, nil
}

// GetSnapshotByExternalID resolves an account through the externalID
// metadata recorded on its snapshots.
func (s *LedgerService) GetSnapshotByExternalID(ctx context.Context, externalID string) (*domain.BalanceSnapshot, error) {
	if externalID == "" {
		return nil, fmt.Errorf("external id is required: %w", apperrors.ErrValidation)
	}

	cid, err := s.store.FindLatestCID(ctx, portsrepo.TagExternalID, externalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("external id %s: %w", externalID, apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "External id lookup failed", "external_id", externalID)
		return nil, fmt.Errorf("external id lookup failed: %w", apperrors.ErrInternal)
	}

	blob, err := s.store.Read(ctx, cid)
	if err != nil {
		s.LogError(ctx, err, "Failed to read snapshot by external id", "external_id", externalID, "cid", cid)
		return nil, fmt.Errorf("failed to read snapshot %s: %w", cid, apperrors.ErrInternal)
	}

	var tagged domain.BalanceSnapshot
	if err := json.Unmarshal(blob, &tagged); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", cid, apperrors.ErrInternal)
	}

	// The tagged blob may be stale; serve whatever the index says is latest.
	return s.loadSnapshot(ctx, tagged.AccountKey)
}

// ApplyDelta applies a signed token/secondary delta, appending a
// transaction record and persisting a new snapshot version. Negative
// resulting balances are rejected.
func (s *LedgerService) ApplyDelta(ctx context.Context, accountKey string, tokenDelta, secondaryDelta decimal.Decimal, prov domain.Provenance) (*domain.BalanceSnapshot, error) {
	if err := checkSignature(prov.Signature); err != nil {
		return nil, err
	}
	accountKey = domain.NormalizeAccountKey(accountKey)

	unlock := s.locks.Lock(accountKey)
	defer unlock()

	snapshot, err := s.loadSnapshot(ctx, accountKey)
	if err != nil {
		return nil, err
	}

	newToken := snapshot.TokenBalance.Add(tokenDelta)
	newSecondary := snapshot.SecondaryBalance.Add(secondaryDelta)
	if newToken.IsNegative() || newSecondary.IsNegative() {
		return nil, fmt.Errorf("delta would make balance negative for %s: %w", accountKey, apperrors.ErrInsufficientBalance)
	}

	snapshot.TokenBalance = newToken
	snapshot.SecondaryBalance = newSecondary
	snapshot.Transactions = append(snapshot.Transactions, domain.TransactionRecord{
		ID:             uuid.NewString(),
		Amount:         tokenDelta,
		Note:           prov.Note,
		AdminSignature: prov.Signature,
		TicketID:       prov.TicketID,
		Timestamp:      time.Now().UTC(),
	})
	snapshot.LastUpdated = time.Now().UTC()

	if err := s.persistSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Applied balance delta",
		"account_key", accountKey,
		"token_delta", tokenDelta.String(),
		"secondary_delta", secondaryDelta.String(),
		"degraded", snapshot.Degraded)
	return snapshot, nil
}

// SetExternalRefs records externalID/externalWallet metadata for the
// account, first-write-wins. A no-op when both are already set or the
// incoming values are empty.
func (s *LedgerService) SetExternalRefs(ctx context.Context, accountKey, externalID, externalWallet string) (*domain.BalanceSnapshot, error) {
	accountKey = domain.NormalizeAccountKey(accountKey)

	unlock := s.locks.Lock(accountKey)
	defer unlock()

	snapshot, err := s.loadSnapshot(ctx, accountKey)
	if err != nil {
		return nil, err
	}

	changed := false
	if snapshot.ExternalID == "" && externalID != "" {
		snapshot.ExternalID = externalID
		changed = true
	}
	if snapshot.ExternalWallet == "" && externalWallet != "" {
		snapshot.ExternalWallet = externalWallet
		changed = true
	}
	if !changed {
		return snapshot, nil
	}

	snapshot.LastUpdated = time.Now().UTC()
	if err := s.persistSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// persistSnapshot writes the snapshot to the durable store, falling back to
// the volatile store when unreachable, and repoints the address index. The
// snapshot's Degraded flag is set to reflect where the write landed.
func (s *LedgerService) persistSnapshot(ctx context.Context, snapshot *domain.BalanceSnapshot) error {
	snapshot.Degraded = false

	blob, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", snapshot.AccountKey, apperrors.ErrInternal)
	}

	tags := map[string]string{portsrepo.TagAccountKey: snapshot.AccountKey}
	if snapshot.ExternalID != "" {
		tags[portsrepo.TagExternalID] = snapshot.ExternalID
	}

	cid, err := s.store.Write(ctx, blob, tags)
	if err != nil {
		if s.fallback == nil {
			s.LogError(ctx, err, "Failed to persist snapshot", "account_key", snapshot.AccountKey)
			return fmt.Errorf("failed to persist snapshot for %s: %w", snapshot.AccountKey, apperrors.ErrStorageUnavailable)
		}

		s.LogWarn(ctx, "Durable store unreachable, writing snapshot to volatile store",
			"account_key", snapshot.AccountKey, "error", err.Error())
		cid, err = s.fallback.Write(ctx, blob, tags)
		if err != nil {
			s.LogError(ctx, err, "Failed to persist snapshot to volatile store", "account_key", snapshot.AccountKey)
			return fmt.Errorf("failed to persist snapshot for %s: %w", snapshot.AccountKey, apperrors.ErrStorageUnavailable)
		}
		snapshot.Degraded = true
	}

	if err := s.idx.Update(ctx, snapshot.AccountKey, cid); err != nil {
		// The in-process index entry is already current; losing the
		// persisted entry costs a reverse lookup after restart.
		s.LogWarn(ctx, "Failed to persist index entry", "account_key", snapshot.AccountKey, "error", err.Error())
	}
	return nil
}
