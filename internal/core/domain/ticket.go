package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus is the lifecycle state of an approval ticket.
type TicketStatus string

const (
	TicketPending  TicketStatus = "pending"
	TicketApproved TicketStatus = "approved"
	TicketRejected TicketStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from this state.
func (s TicketStatus) Terminal() bool {
	return s == TicketApproved || s == TicketRejected
}

// Ticket is a request to credit tokens to an account, backed by an uploaded
// report blob referenced by its content id. Approval applies the token delta
// to the ledger with the approving admin's signature as provenance.
type Ticket struct {
	ID              string          `json:"id"`
	AccountKey      string          `json:"accountKey"`
	ReportCID       string          `json:"reportCID"`
	RequestedTokens decimal.Decimal `json:"requestedTokens"`
	Status          TicketStatus    `json:"status"`
	AdminID         string          `json:"adminID,omitempty"`
	AdminSignature  string          `json:"adminSignature,omitempty"`
	RejectReason    string          `json:"rejectReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
