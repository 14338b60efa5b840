package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is the lifecycle state of a marketplace listing.
type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingCancelled ListingStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from this state.
func (s ListingStatus) Terminal() bool {
	return s == ListingSold || s == ListingCancelled
}

// Listing is an offer to sell a token quantity for a secondary-currency
// price. Once the status leaves active it never transitions again.
type Listing struct {
	ID               string          `json:"id"`
	SellerAccountKey string          `json:"sellerAccountKey"`
	SellerWallet     string          `json:"sellerWallet,omitempty"`
	AmountTokens     decimal.Decimal `json:"amountTokens"`
	PriceSecondary   decimal.Decimal `json:"priceSecondary"`
	Status           ListingStatus   `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
