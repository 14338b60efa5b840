package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormalizeAccountKey canonicalizes an email-like account identifier.
// Account keys are compared and stored in this form everywhere.
func NormalizeAccountKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// BalanceSnapshot is the full state of one account's balances and history
// at a point in time. Every mutation produces a new snapshot; old versions
// remain in the content store but only the latest is addressable through
// the address index.
type BalanceSnapshot struct {
	AccountKey       string              `json:"accountKey"`
	ExternalID       string              `json:"externalID,omitempty"`     // first-write-wins
	ExternalWallet   string              `json:"externalWallet,omitempty"` // first-write-wins
	TokenBalance     decimal.Decimal     `json:"tokenBalance"`
	SecondaryBalance decimal.Decimal     `json:"secondaryBalance"`
	Transactions     []TransactionRecord `json:"transactions"`
	LastUpdated      time.Time           `json:"lastUpdated,omitzero"`

	// Degraded is true when the snapshot was produced or persisted while the
	// content store was unreachable, meaning durability was not achieved.
	// It is not persisted; it describes the copy in hand.
	Degraded bool `json:"degraded,omitempty"`
}

// TransactionRecord is one entry in an account's append-only history.
type TransactionRecord struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"` // signed token delta
	Note           string          `json:"note,omitempty"`
	AdminSignature string          `json:"adminSignature,omitempty"`
	TicketID       string          `json:"ticketID,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Provenance carries the free-text origin of a balance delta into the
// transaction record appended for it.
type Provenance struct {
	Note      string
	Signature string
	TicketID  string
}

// NewSnapshot returns the default snapshot for a never-seen account:
// zero tokens and the configured secondary-currency grant. LastUpdated
// stays zero until the first write so repeated reads of a fresh account
// are identical.
func NewSnapshot(accountKey string, secondaryGrant decimal.Decimal) *BalanceSnapshot {
	return &BalanceSnapshot{
		AccountKey:       NormalizeAccountKey(accountKey),
		TokenBalance:     decimal.Zero,
		SecondaryBalance: secondaryGrant,
		Transactions:     []TransactionRecord{},
	}
}
