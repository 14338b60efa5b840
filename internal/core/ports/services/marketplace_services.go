package services

import (
	"context"

	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	"github.com/credexa/carbon_ledger_app/internal/dto"
)

// BuyResult bundles everything produced by a successful purchase.
type BuyResult struct {
	Listing        *domain.Listing
	Order          *domain.Order
	BuyerSnapshot  *domain.BalanceSnapshot
	SellerSnapshot *domain.BalanceSnapshot
}

// MarketplaceSvcFacade owns listing and order lifecycle and orchestrates
// the paired ledger deltas of a purchase.
type MarketplaceSvcFacade interface {
	CreateListing(ctx context.Context, req dto.CreateListingRequest) (*domain.Listing, error)
	ListListings(ctx context.Context, status domain.ListingStatus) ([]domain.Listing, error)

	// Buy executes a purchase as an atomic pair of ledger deltas plus the
	// active -> sold listing transition. Calls for the same listing are
	// serialized.
	Buy(ctx context.Context, req dto.BuyRequest) (*BuyResult, error)

	// CancelListing transitions active -> cancelled. Only the seller may
	// cancel; terminal listings never transition again.
	CancelListing(ctx context.Context, listingID, sellerAccountKey string) (*domain.Listing, error)

	ListOrders(ctx context.Context, accountKey string) ([]domain.Order, error)
}
