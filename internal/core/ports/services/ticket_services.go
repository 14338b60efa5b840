package services

import (
	"context"

	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	"github.com/credexa/carbon_ledger_app/internal/dto"
)

// TicketSvcFacade owns the approval-ticket workflow that feeds token
// deltas into the ledger.
type TicketSvcFacade interface {
	SubmitTicket(ctx context.Context, req dto.SubmitTicketRequest) (*domain.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)

	// ApproveTicket transitions pending -> approved and credits the token
	// amount to the ticket's account with the admin signature as provenance.
	ApproveTicket(ctx context.Context, ticketID, adminID string, req dto.ApproveTicketRequest) (*domain.Ticket, error)

	// RejectTicket transitions pending -> rejected.
	RejectTicket(ctx context.Context, ticketID, adminID string, req dto.RejectTicketRequest) (*domain.Ticket, error)
}
