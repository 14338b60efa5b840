package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
	"github.com/credexa/carbon_ledger_app/internal/dto"
)

const ticketsCollection = "tickets"

// TicketService implements TicketSvcFacade. Tickets live in a persisted
// collection; approval and rejection run under a per-ticket lock so a
// ticket resolves exactly once.
type TicketService struct {
	BaseService
	ledger  portssvc.LedgerSvcFacade
	tickets *collection[domain.Ticket]
	locks   *keyedMutex
}

var _ portssvc.TicketSvcFacade = (*TicketService)(nil)

// NewTicketService creates a new ticket service persisting its collection
// to the given content store.
func NewTicketService(ledger portssvc.LedgerSvcFacade, store portsrepo.ContentStore) *TicketService {
	return &TicketService{
		ledger:  ledger,
		tickets: newCollection[domain.Ticket](ticketsCollection, store),
		locks:   newKeyedMutex(),
	}
}

// Hydrate loads the persisted tickets. Meant to be called once at startup.
func (s *TicketService) Hydrate(ctx context.Context) error {
	return s.tickets.Hydrate(ctx)
}

// SubmitTicket opens a pending approval ticket referencing an uploaded
// report blob.
func (s *TicketService) SubmitTicket(ctx context.Context, req dto.SubmitTicketRequest) (*domain.Ticket, error) {
	if !req.RequestedTokens.IsPositive() {
		return nil, fmt.Errorf("requestedTokens must be positive: %w", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	ticket := domain.Ticket{
		ID:              uuid.NewString(),
		AccountKey:      domain.NormalizeAccountKey(req.AccountKey),
		ReportCID:       req.ReportCID,
		RequestedTokens: req.RequestedTokens,
		Status:          domain.TicketPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	degraded, err := s.tickets.Update(ctx, func(items []domain.Ticket) ([]domain.Ticket, error) {
		return append(items, ticket), nil
	})
	if err != nil {
		return nil, err
	}
	if degraded {
		s.LogWarn(ctx, "Tickets collection not persisted durably", "ticket_id", ticket.ID)
	}

	s.LogInfo(ctx, "Ticket submitted", "ticket_id", ticket.ID, "account_key", ticket.AccountKey,
		"requested_tokens", ticket.RequestedTokens.String())
	return &ticket, nil
}

// GetTicket returns the ticket by id.
func (s *TicketService) GetTicket(_ context.Context, ticketID string) (*domain.Ticket, error) {
	ticket := s.findTicket(ticketID)
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, apperrors.ErrNotFound)
	}
	return ticket, nil
}

// ListTickets returns tickets filtered by status; an empty status returns
// everything.
func (s *TicketService) ListTickets(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	var out []domain.Ticket
	s.tickets.View(func(items []domain.Ticket) {
		for _, t := range items {
			if status == "" || t.Status == status {
				out = append(out, t)
			}
		}
	})
	if out == nil {
		out = []domain.Ticket{}
	}
	return out, nil
}

// ApproveTicket transitions pending -> approved and credits the token
// amount to the ticket's account. The ledger delta carries the ticket id
// and the admin signature, so the credit is traceable from the account's
// transaction history back to this ticket.
func (s *TicketService) ApproveTicket(ctx context.Context, ticketID, adminID string, req dto.ApproveTicketRequest) (*domain.Ticket, error) {
	if err := checkSignature(req.Signature); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket := s.findTicket(ticketID)
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, apperrors.ErrNotFound)
	}
	if ticket.Status.Terminal() {
		return nil, fmt.Errorf("ticket %s is already %s: %w", ticketID, ticket.Status, apperrors.ErrConflict)
	}

	amount := ticket.RequestedTokens
	if req.TokenAmount != nil {
		amount = *req.TokenAmount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("approval amount must be positive: %w", apperrors.ErrValidation)
	}

	if _, err := s.ledger.ApplyDelta(ctx, ticket.AccountKey, amount, decimal.Zero,
		domain.Provenance{Note: "ticket approval", Signature: req.Signature, TicketID: ticket.ID}); err != nil {
		return nil, err
	}

	approved, err := s.resolveTicket(ctx, ticketID, func(t *domain.Ticket) {
		t.Status = domain.TicketApproved
		t.AdminID = adminID
		t.AdminSignature = req.Signature
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Ticket approved", "ticket_id", ticketID, "admin_id", adminID,
		"credited_tokens", amount.String())
	return approved, nil
}

// RejectTicket transitions pending -> rejected with the admin's reason. No
// ledger delta is applied.
func (s *TicketService) RejectTicket(ctx context.Context, ticketID, adminID string, req dto.RejectTicketRequest) (*domain.Ticket, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket := s.findTicket(ticketID)
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", ticketID, apperrors.ErrNotFound)
	}
	if ticket.Status.Terminal() {
		return nil, fmt.Errorf("ticket %s is already %s: %w", ticketID, ticket.Status, apperrors.ErrConflict)
	}

	rejected, err := s.resolveTicket(ctx, ticketID, func(t *domain.Ticket) {
		t.Status = domain.TicketRejected
		t.AdminID = adminID
		t.RejectReason = req.Reason
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Ticket rejected", "ticket_id", ticketID, "admin_id", adminID)
	return rejected, nil
}

func (s *TicketService) findTicket(ticketID string) *domain.Ticket {
	var found *domain.Ticket
	s.tickets.View(func(items []domain.Ticket) {
		for i := range items {
			if items[i].ID == ticketID {
				t := items[i]
				found = &t
				return
			}
		}
	})
	return found
}

func (s *TicketService) resolveTicket(ctx context.Context, ticketID string, mutate func(*domain.Ticket)) (*domain.Ticket, error) {
	var resolved *domain.Ticket
	degraded, err := s.tickets.Update(ctx, func(items []domain.Ticket) ([]domain.Ticket, error) {
		for i := range items {
			if items[i].ID == ticketID {
				mutate(&items[i])
				items[i].UpdatedAt = time.Now().UTC()
				t := items[i]
				resolved = &t
				return items, nil
			}
		}
		return nil, fmt.Errorf("ticket %s: %w", ticketID, apperrors.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	if degraded {
		s.LogWarn(ctx, "Tickets collection not persisted durably", "ticket_id", ticketID)
	}
	return resolved, nil
}
