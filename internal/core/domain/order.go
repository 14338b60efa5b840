package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the outcome of a purchase attempt.
type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
)

// Order is the immutable record of a completed listing purchase.
// There is exactly one order per sold listing.
type Order struct {
	ID              string          `json:"id"`
	ListingID       string          `json:"listingID"`
	BuyerAccountKey string          `json:"buyerAccountKey"`
	BuyerWallet     string          `json:"buyerWallet,omitempty"`
	AmountTokens    decimal.Decimal `json:"amountTokens"`
	TotalSecondary  decimal.Decimal `json:"totalSecondary"`
	Status          OrderStatus     `json:"status"`
	Signature       string          `json:"signature,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}
