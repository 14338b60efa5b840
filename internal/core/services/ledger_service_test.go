package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
	"github.com/credexa/carbon_ledger_app/internal/core/services"
)

const testSignature = "0xdeadbeefcafef00d"

// MockContentStore is a mock type for the ContentStore interface
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Write(ctx context.Context, blob []byte, tags map[string]string) (string, error) {
	args := m.Called(ctx, blob, tags)
	return args.String(0), args.Error(1)
}

func (m *MockContentStore) Read(ctx context.Context, cid string) ([]byte, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContentStore) FindLatestCID(ctx context.Context, tagKey, tagValue string) (string, error) {
	args := m.Called(ctx, tagKey, tagValue)
	return args.String(0), args.Error(1)
}

// MockAddressIndex is a mock type for the AddressIndex interface
type MockAddressIndex struct {
	mock.Mock
}

func (m *MockAddressIndex) Resolve(ctx context.Context, accountKey string) (string, error) {
	args := m.Called(ctx, accountKey)
	return args.String(0), args.Error(1)
}

func (m *MockAddressIndex) Update(ctx context.Context, accountKey string, cid string) error {
	args := m.Called(ctx, accountKey, cid)
	return args.Error(0)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockStore *MockContentStore
	mockIdx   *MockAddressIndex
	grant     decimal.Decimal
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockStore = new(MockContentStore)
	suite.mockIdx = new(MockAddressIndex)
	suite.grant = decimal.NewFromInt(500)
}

func (suite *LedgerServiceTestSuite) newService(fallback portsrepo.ContentStore) *services.LedgerService {
	return services.NewLedgerService(suite.mockStore, fallback, suite.mockIdx, suite.grant)
}

func (suite *LedgerServiceTestSuite) marshalSnapshot(s *domain.BalanceSnapshot) []byte {
	blob, err := json.Marshal(s)
	suite.Require().NoError(err)
	return blob
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestGetSnapshot_DefaultForUnknownAccount() {
	ctx := context.Background()
	service := suite.newService(nil)

	suite.mockIdx.On("Resolve", ctx, "new@example.com").
		Return("", fmt.Errorf("account: %w", apperrors.ErrNotFound)).Once()

	snapshot, err := service.GetSnapshot(ctx, "New@Example.com ")

	suite.Require().NoError(err)
	suite.Equal("new@example.com", snapshot.AccountKey)
	suite.True(snapshot.TokenBalance.IsZero())
	suite.True(snapshot.SecondaryBalance.Equal(suite.grant))
	suite.Empty(snapshot.Transactions)
	suite.False(snapshot.Degraded)
	suite.mockIdx.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetSnapshot_RepeatReadsOfFreshAccountAreIdentical() {
	ctx := context.Background()
	service := suite.newService(nil)

	suite.mockIdx.On("Resolve", ctx, "new@example.com").
		Return("", fmt.Errorf("account: %w", apperrors.ErrNotFound)).Twice()

	first, err := service.GetSnapshot(ctx, "new@example.com")
	suite.Require().NoError(err)
	second, err := service.GetSnapshot(ctx, "new@example.com")
	suite.Require().NoError(err)

	// Reads without an intervening write must not fabricate differing
	// state, timestamps included.
	suite.True(first.LastUpdated.IsZero())
	suite.Equal(suite.marshalSnapshot(first), suite.marshalSnapshot(second))
	suite.mockIdx.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetSnapshot_ReturnsStoredSnapshot() {
	ctx := context.Background()
	service := suite.newService(nil)

	stored := domain.NewSnapshot("alice@example.com", suite.grant)
	stored.TokenBalance = decimal.NewFromInt(42)
	blob := suite.marshalSnapshot(stored)

	suite.mockIdx.On("Resolve", ctx, "alice@example.com").Return("cid-1", nil).Once()
	suite.mockStore.On("Read", ctx, "cid-1").Return(blob, nil).Once()

	snapshot, err := service.GetSnapshot(ctx, "alice@example.com")

	suite.Require().NoError(err)
	suite.True(snapshot.TokenBalance.Equal(decimal.NewFromInt(42)))
	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetSnapshot_DegradedWhenBlobUnreadable() {
	ctx := context.Background()
	service := suite.newService(contentstore.NewMemoryStore())

	suite.mockIdx.On("Resolve", ctx, "alice@example.com").Return("cid-1", nil).Once()
	suite.mockStore.On("Read", ctx, "cid-1").
		Return(nil, fmt.Errorf("gateways down: %w", apperrors.ErrStorageUnavailable)).Once()

	snapshot, err := service.GetSnapshot(ctx, "alice@example.com")

	suite.Require().NoError(err)
	suite.True(snapshot.Degraded)
	suite.True(snapshot.TokenBalance.IsZero())
	suite.True(snapshot.SecondaryBalance.Equal(suite.grant))
}

func (suite *LedgerServiceTestSuite) TestApplyDelta_CreatesAccountAndAppendsTransaction() {
	ctx := context.Background()
	service := suite.newService(nil)

	suite.mockIdx.On("Resolve", ctx, "bob@example.com").
		Return("", fmt.Errorf("account: %w", apperrors.ErrNotFound)).Once()
	suite.mockStore.On("Write", ctx, mock.Anything, mock.MatchedBy(func(tags map[string]string) bool {
		return tags[portsrepo.TagAccountKey] == "bob@example.com"
	})).Return("cid-new", nil).Once()
	suite.mockIdx.On("Update", ctx, "bob@example.com", "cid-new").Return(nil).Once()

	snapshot, err := service.ApplyDelta(ctx, "Bob@Example.com",
		decimal.NewFromInt(10), decimal.NewFromInt(-100),
		domain.Provenance{Note: "test credit", Signature: testSignature, TicketID: "ticket-1"})

	suite.Require().NoError(err)
	suite.True(snapshot.TokenBalance.Equal(decimal.NewFromInt(10)))
	suite.True(snapshot.SecondaryBalance.Equal(decimal.NewFromInt(400)))
	suite.Require().Len(snapshot.Transactions, 1)
	tx := snapshot.Transactions[0]
	suite.True(tx.Amount.Equal(decimal.NewFromInt(10)))
	suite.Equal("test credit", tx.Note)
	suite.Equal(testSignature, tx.AdminSignature)
	suite.Equal("ticket-1", tx.TicketID)
	suite.NotEmpty(tx.ID)
	suite.WithinDuration(time.Now(), tx.Timestamp, time.Second)
	suite.False(snapshot.Degraded)
	suite.mockStore.AssertExpectations(suite.T())
	suite.mockIdx.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyDelta_RejectsShortSignature() {
	ctx := context.Background()
	service := suite.newService(nil)

	_, err := service.ApplyDelta(ctx, "bob@example.com",
		decimal.NewFromInt(1), decimal.Zero, domain.Provenance{Signature: "short"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidSignature)
	suite.mockStore.AssertNotCalled(suite.T(), "Write", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApplyDelta_RejectsNegativeResult() {
	ctx := context.Background()
	service := suite.newService(nil)

	suite.mockIdx.On("Resolve", ctx, "bob@example.com").
		Return("", fmt.Errorf("account: %w", apperrors.ErrNotFound)).Once()

	_, err := service.ApplyDelta(ctx, "bob@example.com",
		decimal.NewFromInt(-5), decimal.Zero, domain.Provenance{Signature: testSignature})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.mockStore.AssertNotCalled(suite.T(), "Write", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApplyDelta_FallsBackWhenStoreUnavailable() {
	ctx := context.Background()
	fallback := contentstore.NewMemoryStore()
	service := suite.newService(fallback)

	suite.mockIdx.On("Resolve", ctx, "bob@example.com").
		Return("", fmt.Errorf("account: %w", apperrors.ErrNotFound)).Once()
	suite.mockStore.On("Write", ctx, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("pin failed: %w", apperrors.ErrStorageUnavailable)).Once()
	suite.mockIdx.On("Update", ctx, "bob@example.com", mock.AnythingOfType("string")).Return(nil).Once()

	snapshot, err := service.ApplyDelta(ctx, "bob@example.com",
		decimal.NewFromInt(3), decimal.Zero, domain.Provenance{Signature: testSignature})

	suite.Require().NoError(err)
	suite.True(snapshot.Degraded)
	suite.True(snapshot.TokenBalance.Equal(decimal.NewFromInt(3)))

	// The volatile store must hold the blob the index now points at.
	cid, err := fallback.FindLatestCID(ctx, portsrepo.TagAccountKey, "bob@example.com")
	suite.Require().NoError(err)
	blob, err := fallback.Read(ctx, cid)
	suite.Require().NoError(err)
	suite.NotEmpty(blob)
}

func (suite *LedgerServiceTestSuite) TestSetExternalRefs_FirstWriteWins() {
	ctx := context.Background()
	service := suite.newService(nil)

	stored := domain.NewSnapshot("alice@example.com", suite.grant)
	stored.ExternalID = "user-1"
	blob := suite.marshalSnapshot(stored)

	suite.mockIdx.On("Resolve", ctx, "alice@example.com").Return("cid-1", nil).Once()
	suite.mockStore.On("Read", ctx, "cid-1").Return(blob, nil).Once()
	suite.mockStore.On("Write", ctx, mock.Anything, mock.MatchedBy(func(tags map[string]string) bool {
		return tags[portsrepo.TagExternalID] == "user-1"
	})).Return("cid-2", nil).Once()
	suite.mockIdx.On("Update", ctx, "alice@example.com", "cid-2").Return(nil).Once()

	snapshot, err := service.SetExternalRefs(ctx, "alice@example.com", "user-other", "0xwallet")

	suite.Require().NoError(err)
	suite.Equal("user-1", snapshot.ExternalID, "existing external id must not be overwritten")
	suite.Equal("0xwallet", snapshot.ExternalWallet)
	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSetExternalRefs_NoOpWhenNothingChanges() {
	ctx := context.Background()
	service := suite.newService(nil)

	stored := domain.NewSnapshot("alice@example.com", suite.grant)
	stored.ExternalID = "user-1"
	stored.ExternalWallet = "0xwallet"
	blob := suite.marshalSnapshot(stored)

	suite.mockIdx.On("Resolve", ctx, "alice@example.com").Return("cid-1", nil).Once()
	suite.mockStore.On("Read", ctx, "cid-1").Return(blob, nil).Once()

	_, err := service.SetExternalRefs(ctx, "alice@example.com", "user-2", "0xother")

	suite.Require().NoError(err)
	suite.mockStore.AssertNotCalled(suite.T(), "Write", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetSnapshotByExternalID() {
	ctx := context.Background()
	service := suite.newService(nil)

	stored := domain.NewSnapshot("alice@example.com", suite.grant)
	stored.ExternalID = "user-1"
	blob := suite.marshalSnapshot(stored)

	suite.mockStore.On("FindLatestCID", ctx, portsrepo.TagExternalID, "user-1").Return("cid-1", nil).Once()
	suite.mockStore.On("Read", ctx, "cid-1").Return(blob, nil).Twice()
	suite.mockIdx.On("Resolve", ctx, "alice@example.com").Return("cid-1", nil).Once()

	snapshot, err := service.GetSnapshotByExternalID(ctx, "user-1")

	suite.Require().NoError(err)
	suite.Equal("alice@example.com", snapshot.AccountKey)
	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetSnapshotByExternalID_NotFound() {
	ctx := context.Background()
	service := suite.newService(nil)

	suite.mockStore.On("FindLatestCID", ctx, portsrepo.TagExternalID, "user-x").
		Return("", fmt.Errorf("tag: %w", apperrors.ErrNotFound)).Once()

	_, err := service.GetSnapshotByExternalID(ctx, "user-x")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// TestApplyDelta_ConcurrentDeltasAreNotLost hammers one account from many
// goroutines against a real in-memory store and checks that every delta
// lands exactly once.
func TestApplyDelta_ConcurrentDeltasAreNotLost(t *testing.T) {
	ledger, _ := newTestLedger(decimal.Zero)
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ApplyDelta(ctx, "hot@example.com",
				decimal.NewFromInt(1), decimal.Zero,
				domain.Provenance{Note: "concurrent credit", Signature: testSignature})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	snapshot, err := ledger.GetSnapshot(ctx, "hot@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !snapshot.TokenBalance.Equal(decimal.NewFromInt(workers)) {
		t.Fatalf("expected balance %d, got %s", workers, snapshot.TokenBalance)
	}
	if len(snapshot.Transactions) != workers {
		t.Fatalf("expected %d transactions, got %d", workers, len(snapshot.Transactions))
	}
}
