package dto

import (
	"time"

	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateListingRequest defines the data needed to create a listing.
type CreateListingRequest struct {
	SellerAccountKey string          `json:"sellerAccountKey" binding:"required,accountkey"`
	SellerWallet     string          `json:"sellerWallet"`
	AmountTokens     decimal.Decimal `json:"amountTokens" binding:"required"`
	PriceSecondary   decimal.Decimal `json:"priceSecondary" binding:"required"`
	Signature        string          `json:"signature" binding:"required"`
}

// BuyRequest defines the data needed to execute a purchase.
type BuyRequest struct {
	ListingID       string `json:"listingID" binding:"required"`
	BuyerAccountKey string `json:"buyerAccountKey" binding:"required,accountkey"`
	BuyerWallet     string `json:"buyerWallet"`
	Signature       string `json:"signature" binding:"required"`
}

// CancelListingRequest identifies the seller cancelling their listing.
type CancelListingRequest struct {
	SellerAccountKey string `json:"sellerAccountKey" binding:"required,accountkey"`
}

// ListingResponse mirrors domain.Listing on the wire.
type ListingResponse struct {
	ID               string               `json:"id"`
	SellerAccountKey string               `json:"sellerAccountKey"`
	SellerWallet     string               `json:"sellerWallet,omitempty"`
	AmountTokens     decimal.Decimal      `json:"amountTokens"`
	PriceSecondary   decimal.Decimal      `json:"priceSecondary"`
	Status           domain.ListingStatus `json:"status"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// OrderResponse mirrors domain.Order on the wire.
type OrderResponse struct {
	ID              string             `json:"id"`
	ListingID       string             `json:"listingID"`
	BuyerAccountKey string             `json:"buyerAccountKey"`
	BuyerWallet     string             `json:"buyerWallet,omitempty"`
	AmountTokens    decimal.Decimal    `json:"amountTokens"`
	TotalSecondary  decimal.Decimal    `json:"totalSecondary"`
	Status          domain.OrderStatus `json:"status"`
	Signature       string             `json:"signature,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// BuyResponse bundles everything produced by a successful purchase.
type BuyResponse struct {
	Listing        ListingResponse  `json:"listing"`
	Order          OrderResponse    `json:"order"`
	BuyerSnapshot  SnapshotResponse `json:"buyerSnapshot"`
	SellerSnapshot SnapshotResponse `json:"sellerSnapshot"`
}

// ListListingsParams defines query parameters for listing listings.
type ListListingsParams struct {
	Status string `form:"status,default=active"`
}

// ListListingsResponse wraps the list of listings.
type ListListingsResponse struct {
	Listings []ListingResponse `json:"listings"`
}

// ListOrdersParams defines query parameters for listing orders.
type ListOrdersParams struct {
	AccountKey string `form:"accountKey"`
}

// ListOrdersResponse wraps the list of orders.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// ToListingResponse converts a domain.Listing to ListingResponse.
func ToListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:               l.ID,
		SellerAccountKey: l.SellerAccountKey,
		SellerWallet:     l.SellerWallet,
		AmountTokens:     l.AmountTokens,
		PriceSecondary:   l.PriceSecondary,
		Status:           l.Status,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// ToListingResponses converts a slice of domain.Listing to DTOs.
func ToListingResponses(listings []domain.Listing) []ListingResponse {
	res := make([]ListingResponse, len(listings))
	for i, l := range listings {
		res[i] = ToListingResponse(&l)
	}
	return res
}

// ToOrderResponse converts a domain.Order to OrderResponse.
func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		ListingID:       o.ListingID,
		BuyerAccountKey: o.BuyerAccountKey,
		BuyerWallet:     o.BuyerWallet,
		AmountTokens:    o.AmountTokens,
		TotalSecondary:  o.TotalSecondary,
		Status:          o.Status,
		Signature:       o.Signature,
		CreatedAt:       o.CreatedAt,
	}
}

// ToOrderResponses converts a slice of domain.Order to DTOs.
func ToOrderResponses(orders []domain.Order) []OrderResponse {
	res := make([]OrderResponse, len(orders))
	for i, o := range orders {
		res[i] = ToOrderResponse(&o)
	}
	return res
}
