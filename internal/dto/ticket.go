package dto

import (
	"time"

	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitTicketRequest defines the data needed to open an approval ticket.
type SubmitTicketRequest struct {
	AccountKey      string          `json:"accountKey" binding:"required,accountkey"`
	ReportCID       string          `json:"reportCID" binding:"required"`
	RequestedTokens decimal.Decimal `json:"requestedTokens" binding:"required"`
}

// ApproveTicketRequest defines the admin approval payload. TokenAmount
// overrides the requested amount when set; otherwise the ticket's requested
// amount is credited.
type ApproveTicketRequest struct {
	Signature   string           `json:"signature" binding:"required"`
	TokenAmount *decimal.Decimal `json:"tokenAmount"`
}

// RejectTicketRequest defines the admin rejection payload.
type RejectTicketRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TicketResponse mirrors domain.Ticket on the wire.
type TicketResponse struct {
	ID              string              `json:"id"`
	AccountKey      string              `json:"accountKey"`
	ReportCID       string              `json:"reportCID"`
	RequestedTokens decimal.Decimal     `json:"requestedTokens"`
	Status          domain.TicketStatus `json:"status"`
	AdminID         string              `json:"adminID,omitempty"`
	RejectReason    string              `json:"rejectReason,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ListTicketsParams defines query parameters for listing tickets.
type ListTicketsParams struct {
	Status string `form:"status"`
}

// ListTicketsResponse wraps the list of tickets.
type ListTicketsResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

// ToTicketResponse converts a domain.Ticket to TicketResponse.
func ToTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		AccountKey:      t.AccountKey,
		ReportCID:       t.ReportCID,
		RequestedTokens: t.RequestedTokens,
		Status:          t.Status,
		AdminID:         t.AdminID,
		RejectReason:    t.RejectReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// ToTicketResponses converts a slice of domain.Ticket to DTOs.
func ToTicketResponses(tickets []domain.Ticket) []TicketResponse {
	res := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		res[i] = ToTicketResponse(&t)
	}
	return res
}
