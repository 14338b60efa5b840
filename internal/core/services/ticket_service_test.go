package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
	"github.com/credexa/carbon_ledger_app/internal/core/services"
	"github.com/credexa/carbon_ledger_app/internal/dto"
)

const testAdminID = "admin-1"

type TicketServiceTestSuite struct {
	suite.Suite
	store   *contentstore.MemoryStore
	ledger  portssvc.LedgerSvcFacade
	service *services.TicketService
	ctx     context.Context
}

func (suite *TicketServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ledger, suite.store = newTestLedger(decimal.Zero)
	suite.service = services.NewTicketService(suite.ledger, suite.store)
}

func (suite *TicketServiceTestSuite) submitTicket(accountKey string, tokens int64) *domain.Ticket {
	ticket, err := suite.service.SubmitTicket(suite.ctx, dto.SubmitTicketRequest{
		AccountKey:      accountKey,
		ReportCID:       "sha256-report",
		RequestedTokens: decimal.NewFromInt(tokens),
	})
	suite.Require().NoError(err)
	return ticket
}

// --- Test Cases ---

func (suite *TicketServiceTestSuite) TestSubmitTicket_Success() {
	ticket := suite.submitTicket("Farmer@Example.com", 25)

	suite.Equal("farmer@example.com", ticket.AccountKey)
	suite.Equal(domain.TicketPending, ticket.Status)
	suite.Equal("sha256-report", ticket.ReportCID)
	suite.True(ticket.RequestedTokens.Equal(decimal.NewFromInt(25)))
	suite.NotEmpty(ticket.ID)
}

func (suite *TicketServiceTestSuite) TestSubmitTicket_RejectsNonPositiveTokens() {
	_, err := suite.service.SubmitTicket(suite.ctx, dto.SubmitTicketRequest{
		AccountKey:      "farmer@example.com",
		ReportCID:       "sha256-report",
		RequestedTokens: decimal.NewFromInt(-1),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TicketServiceTestSuite) TestApproveTicket_CreditsAccount() {
	ticket := suite.submitTicket("farmer@example.com", 25)

	approved, err := suite.service.ApproveTicket(suite.ctx, ticket.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature})

	suite.Require().NoError(err)
	suite.Equal(domain.TicketApproved, approved.Status)
	suite.Equal(testAdminID, approved.AdminID)
	suite.Equal(testSignature, approved.AdminSignature)

	snapshot, err := suite.ledger.GetSnapshot(suite.ctx, "farmer@example.com")
	suite.Require().NoError(err)
	suite.True(snapshot.TokenBalance.Equal(decimal.NewFromInt(25)))
	suite.Require().Len(snapshot.Transactions, 1)
	suite.Equal(ticket.ID, snapshot.Transactions[0].TicketID)
	suite.Equal(testSignature, snapshot.Transactions[0].AdminSignature)
}

func (suite *TicketServiceTestSuite) TestApproveTicket_AmountOverride() {
	ticket := suite.submitTicket("farmer@example.com", 25)

	override := decimal.NewFromInt(10)
	_, err := suite.service.ApproveTicket(suite.ctx, ticket.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature, TokenAmount: &override})
	suite.Require().NoError(err)

	snapshot, err := suite.ledger.GetSnapshot(suite.ctx, "farmer@example.com")
	suite.Require().NoError(err)
	suite.True(snapshot.TokenBalance.Equal(override))
}

func (suite *TicketServiceTestSuite) TestApproveTicket_TerminalTicketConflicts() {
	ticket := suite.submitTicket("farmer@example.com", 25)

	_, err := suite.service.ApproveTicket(suite.ctx, ticket.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature})
	suite.Require().NoError(err)

	// A second approval must not double-credit.
	_, err = suite.service.ApproveTicket(suite.ctx, ticket.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature})
	suite.ErrorIs(err, apperrors.ErrConflict)

	snapshot, err := suite.ledger.GetSnapshot(suite.ctx, "farmer@example.com")
	suite.Require().NoError(err)
	suite.True(snapshot.TokenBalance.Equal(decimal.NewFromInt(25)))
	suite.Len(snapshot.Transactions, 1)
}

func (suite *TicketServiceTestSuite) TestApproveTicket_RejectsShortSignature() {
	ticket := suite.submitTicket("farmer@example.com", 25)

	_, err := suite.service.ApproveTicket(suite.ctx, ticket.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: "sig"})
	suite.ErrorIs(err, apperrors.ErrInvalidSignature)
}

func (suite *TicketServiceTestSuite) TestApproveTicket_NotFound() {
	_, err := suite.service.ApproveTicket(suite.ctx, "missing", testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TicketServiceTestSuite) TestRejectTicket() {
	ticket := suite.submitTicket("farmer@example.com", 25)

	rejected, err := suite.service.RejectTicket(suite.ctx, ticket.ID, testAdminID,
		dto.RejectTicketRequest{Reason: "report unreadable"})

	suite.Require().NoError(err)
	suite.Equal(domain.TicketRejected, rejected.Status)
	suite.Equal("report unreadable", rejected.RejectReason)

	// Rejection applies no delta.
	snapshot, err := suite.ledger.GetSnapshot(suite.ctx, "farmer@example.com")
	suite.Require().NoError(err)
	suite.True(snapshot.TokenBalance.IsZero())
	suite.Empty(snapshot.Transactions)

	// Rejected tickets cannot be approved afterwards.
	_, err = suite.service.ApproveTicket(suite.ctx, ticket.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature})
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TicketServiceTestSuite) TestListTickets_FiltersByStatus() {
	pending := suite.submitTicket("a@example.com", 5)
	toApprove := suite.submitTicket("b@example.com", 10)

	_, err := suite.service.ApproveTicket(suite.ctx, toApprove.ID, testAdminID,
		dto.ApproveTicketRequest{Signature: testSignature})
	suite.Require().NoError(err)

	pendings, err := suite.service.ListTickets(suite.ctx, domain.TicketPending)
	suite.Require().NoError(err)
	suite.Require().Len(pendings, 1)
	suite.Equal(pending.ID, pendings[0].ID)

	all, err := suite.service.ListTickets(suite.ctx, "")
	suite.Require().NoError(err)
	suite.Len(all, 2)
}

func (suite *TicketServiceTestSuite) TestHydrate_RestoresTickets() {
	ticket := suite.submitTicket("farmer@example.com", 25)

	restarted := services.NewTicketService(suite.ledger, suite.store)
	suite.Require().NoError(restarted.Hydrate(suite.ctx))

	got, err := restarted.GetTicket(suite.ctx, ticket.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.TicketPending, got.Status)
}

func TestTicketServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TicketServiceTestSuite))
}
