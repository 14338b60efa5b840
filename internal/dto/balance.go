package dto

import (
	"time"

	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StoreBalanceRequest defines the admin-originated delta applied to an
// account's balances.
type StoreBalanceRequest struct {
	AccountKey     string          `json:"accountKey" binding:"required,accountkey"`
	TokenDelta     decimal.Decimal `json:"tokenDelta"`
	SecondaryDelta decimal.Decimal `json:"secondaryDelta"`
	Signature      string          `json:"signature" binding:"required"`
	Note           string          `json:"note"`
	TicketID       string          `json:"ticketID"`
	ExternalID     string          `json:"externalID"`     // optional, first-write-wins
	ExternalWallet string          `json:"externalWallet"` // optional, first-write-wins
}

// TransactionResponse mirrors domain.TransactionRecord on the wire.
type TransactionResponse struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note,omitempty"`
	AdminSignature string          `json:"adminSignature,omitempty"`
	TicketID       string          `json:"ticketID,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// SnapshotResponse defines the data returned for an account snapshot.
type SnapshotResponse struct {
	AccountKey       string                `json:"accountKey"`
	ExternalID       string                `json:"externalID,omitempty"`
	ExternalWallet   string                `json:"externalWallet,omitempty"`
	TokenBalance     decimal.Decimal       `json:"tokenBalance"`
	SecondaryBalance decimal.Decimal       `json:"secondaryBalance"`
	Transactions     []TransactionResponse `json:"transactions"`
	LastUpdated      time.Time             `json:"lastUpdated,omitzero"`
	Degraded         bool                  `json:"degraded,omitempty"`
}

// ToTransactionResponse converts a domain.TransactionRecord to its DTO.
func ToTransactionResponse(tx domain.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID,
		Amount:         tx.Amount,
		Note:           tx.Note,
		AdminSignature: tx.AdminSignature,
		TicketID:       tx.TicketID,
		Timestamp:      tx.Timestamp,
	}
}

// ToSnapshotResponse converts a domain.BalanceSnapshot to SnapshotResponse.
func ToSnapshotResponse(s *domain.BalanceSnapshot) SnapshotResponse {
	txs := make([]TransactionResponse, len(s.Transactions))
	for i, tx := range s.Transactions {
		txs[i] = ToTransactionResponse(tx)
	}
	return SnapshotResponse{
		AccountKey:       s.AccountKey,
		ExternalID:       s.ExternalID,
		ExternalWallet:   s.ExternalWallet,
		TokenBalance:     s.TokenBalance,
		SecondaryBalance: s.SecondaryBalance,
		Transactions:     txs,
		LastUpdated:      s.LastUpdated,
		Degraded:         s.Degraded,
	}
}

// ListTransactionsResponse wraps an account's transaction history.
type ListTransactionsResponse struct {
	AccountKey   string                `json:"accountKey"`
	Transactions []TransactionResponse `json:"transactions"`
}
