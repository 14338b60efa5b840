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

const (
	listingsCollection = "listings"
	ordersCollection   = "orders"
)

// MarketplaceService implements MarketplaceSvcFacade. Listings and orders
// live in persisted collections; purchases run under a per-listing lock so
// a listing can only ever be sold once.
type MarketplaceService struct {
	BaseService
	ledger   portssvc.LedgerSvcFacade
	listings *collection[domain.Listing]
	orders   *collection[domain.Order]
	locks    *keyedMutex
}

var _ portssvc.MarketplaceSvcFacade = (*MarketplaceService)(nil)

// NewMarketplaceService creates a new marketplace service persisting its
// collections to the given content store.
func NewMarketplaceService(ledger portssvc.LedgerSvcFacade, store portsrepo.ContentStore) *MarketplaceService {
	return &MarketplaceService{
		ledger:   ledger,
		listings: newCollection[domain.Listing](listingsCollection, store),
		orders:   newCollection[domain.Order](ordersCollection, store),
		locks:    newKeyedMutex(),
	}
}

// Hydrate loads the persisted listings and orders. Meant to be called once
// at startup before the service takes traffic.
func (s *MarketplaceService) Hydrate(ctx context.Context) error {
	if err := s.listings.Hydrate(ctx); err != nil {
		return err
	}
	return s.orders.Hydrate(ctx)
}

// CreateListing validates the seller holds the offered tokens and records
// an active listing. Tokens are not escrowed, but tokens already committed
// to the seller's other active listings count against what is available to
// list; the balance itself is re-checked when the listing sells.
func (s *MarketplaceService) CreateListing(ctx context.Context, req dto.CreateListingRequest) (*domain.Listing, error) {
	if err := checkSignature(req.Signature); err != nil {
		return nil, err
	}
	if !req.AmountTokens.IsPositive() {
		return nil, fmt.Errorf("amountTokens must be positive: %w", apperrors.ErrValidation)
	}
	if !req.PriceSecondary.IsPositive() {
		return nil, fmt.Errorf("priceSecondary must be positive: %w", apperrors.ErrValidation)
	}

	sellerKey := domain.NormalizeAccountKey(req.SellerAccountKey)

	// Serialized per seller so two concurrent listings cannot both pass
	// the availability check against the same tokens.
	unlock := s.locks.Lock(sellerKey)
	defer unlock()

	snapshot, err := s.ledger.GetSnapshot(ctx, sellerKey)
	if err != nil {
		return nil, err
	}
	available := snapshot.TokenBalance.Sub(s.committedTokens(sellerKey))
	if available.LessThan(req.AmountTokens) {
		return nil, fmt.Errorf("seller has %s tokens available (balance %s minus active listings), listing asks %s: %w",
			available.String(), snapshot.TokenBalance.String(), req.AmountTokens.String(), apperrors.ErrInsufficientBalance)
	}

	if req.SellerWallet != "" {
		if _, err := s.ledger.SetExternalRefs(ctx, sellerKey, "", req.SellerWallet); err != nil {
			s.LogWarn(ctx, "Failed to record seller wallet", "account_key", sellerKey, "error", err.Error())
		}
	}

	now := time.Now().UTC()
	listing := domain.Listing{
		ID:               uuid.NewString(),
		SellerAccountKey: sellerKey,
		SellerWallet:     req.SellerWallet,
		AmountTokens:     req.AmountTokens,
		PriceSecondary:   req.PriceSecondary,
		Status:           domain.ListingActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	degraded, err := s.listings.Update(ctx, func(items []domain.Listing) ([]domain.Listing, error) {
		return append(items, listing), nil
	})
	if err != nil {
		return nil, err
	}
	if degraded {
		s.LogWarn(ctx, "Listings collection not persisted durably", "listing_id", listing.ID)
	}

	s.LogInfo(ctx, "Listing created", "listing_id", listing.ID, "seller", sellerKey,
		"amount_tokens", listing.AmountTokens.String(), "price_secondary", listing.PriceSecondary.String())
	return &listing, nil
}

// ListListings returns listings filtered by status; an empty status returns
// everything.
func (s *MarketplaceService) ListListings(_ context.Context, status domain.ListingStatus) ([]domain.Listing, error) {
	var out []domain.Listing
	s.listings.View(func(items []domain.Listing) {
		for _, l := range items {
			if status == "" || l.Status == status {
				out = append(out, l)
			}
		}
	})
	if out == nil {
		out = []domain.Listing{}
	}
	return out, nil
}

// Buy executes a purchase: credit tokens / debit price on the buyer, the
// mirror pair on the seller, transition the listing to sold, and record the
// order. Runs under the listing's lock so double-purchase is impossible.
func (s *MarketplaceService) Buy(ctx context.Context, req dto.BuyRequest) (*portssvc.BuyResult, error) {
	if err := checkSignature(req.Signature); err != nil {
		return nil, err
	}
	buyerKey := domain.NormalizeAccountKey(req.BuyerAccountKey)

	unlock := s.locks.Lock(req.ListingID)
	defer unlock()

	listing := s.findListing(req.ListingID)
	if listing == nil {
		return nil, fmt.Errorf("listing %s: %w", req.ListingID, apperrors.ErrNotFound)
	}
	if listing.Status != domain.ListingActive {
		return nil, fmt.Errorf("listing %s is %s: %w", listing.ID, listing.Status, apperrors.ErrListingUnavailable)
	}
	if listing.SellerAccountKey == buyerKey {
		return nil, fmt.Errorf("account %s cannot buy its own listing: %w", buyerKey, apperrors.ErrSelfTrade)
	}

	buyerBefore, err := s.ledger.GetSnapshot(ctx, buyerKey)
	if err != nil {
		return nil, err
	}
	if buyerBefore.SecondaryBalance.LessThan(listing.PriceSecondary) {
		return nil, fmt.Errorf("buyer holds %s, listing costs %s: %w",
			buyerBefore.SecondaryBalance.String(), listing.PriceSecondary.String(), apperrors.ErrInsufficientBalance)
	}

	buyerSnapshot, err := s.ledger.ApplyDelta(ctx, buyerKey,
		listing.AmountTokens, listing.PriceSecondary.Neg(),
		domain.Provenance{Note: "marketplace purchase", Signature: req.Signature, TicketID: listing.ID})
	if err != nil {
		return nil, err
	}

	sellerSnapshot, err := s.ledger.ApplyDelta(ctx, listing.SellerAccountKey,
		listing.AmountTokens.Neg(), listing.PriceSecondary,
		domain.Provenance{Note: "marketplace sale", Signature: req.Signature, TicketID: listing.ID})
	if err != nil {
		// Reverse the buyer leg so balances stay consistent, then record
		// the failed attempt for audit.
		if _, revErr := s.ledger.ApplyDelta(ctx, buyerKey,
			listing.AmountTokens.Neg(), listing.PriceSecondary,
			domain.Provenance{Note: "marketplace purchase reversal", Signature: req.Signature, TicketID: listing.ID}); revErr != nil {
			s.LogError(ctx, revErr, "Failed to reverse buyer leg after seller leg failure",
				"listing_id", listing.ID, "buyer", buyerKey)
		}
		s.recordOrder(ctx, listing, req, buyerKey, domain.OrderFailed)
		return nil, fmt.Errorf("failed to settle seller leg for listing %s: %w", listing.ID, err)
	}

	degraded, err := s.listings.Update(ctx, func(items []domain.Listing) ([]domain.Listing, error) {
		for i := range items {
			if items[i].ID == listing.ID {
				items[i].Status = domain.ListingSold
				items[i].UpdatedAt = time.Now().UTC()
				sold := items[i]
				listing = &sold
				return items, nil
			}
		}
		return nil, fmt.Errorf("listing %s: %w", listing.ID, apperrors.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	if degraded {
		s.LogWarn(ctx, "Listings collection not persisted durably", "listing_id", listing.ID)
	}

	order := s.recordOrder(ctx, listing, req, buyerKey, domain.OrderCompleted)

	if req.BuyerWallet != "" {
		if _, err := s.ledger.SetExternalRefs(ctx, buyerKey, "", req.BuyerWallet); err != nil {
			s.LogWarn(ctx, "Failed to record buyer wallet", "account_key", buyerKey, "error", err.Error())
		}
	}

	s.LogInfo(ctx, "Listing purchased", "listing_id", listing.ID, "order_id", order.ID,
		"buyer", buyerKey, "seller", listing.SellerAccountKey)
	return &portssvc.BuyResult{
		Listing:        listing,
		Order:          order,
		BuyerSnapshot:  buyerSnapshot,
		SellerSnapshot: sellerSnapshot,
	}, nil
}

// committedTokens sums the tokens tied up in the seller's active listings.
func (s *MarketplaceService) committedTokens(sellerKey string) decimal.Decimal {
	committed := decimal.Zero
	s.listings.View(func(items []domain.Listing) {
		for _, l := range items {
			if l.SellerAccountKey == sellerKey && l.Status == domain.ListingActive {
				committed = committed.Add(l.AmountTokens)
			}
		}
	})
	return committed
}

func (s *MarketplaceService) findListing(listingID string) *domain.Listing {
	var found *domain.Listing
	s.listings.View(func(items []domain.Listing) {
		for i := range items {
			if items[i].ID == listingID {
				l := items[i]
				found = &l
				return
			}
		}
	})
	return found
}

func (s *MarketplaceService) recordOrder(ctx context.Context, listing *domain.Listing, req dto.BuyRequest, buyerKey string, status domain.OrderStatus) *domain.Order {
	order := domain.Order{
		ID:              uuid.NewString(),
		ListingID:       listing.ID,
		BuyerAccountKey: buyerKey,
		BuyerWallet:     req.BuyerWallet,
		AmountTokens:    listing.AmountTokens,
		TotalSecondary:  listing.PriceSecondary,
		Status:          status,
		Signature:       req.Signature,
		CreatedAt:       time.Now().UTC(),
	}

	degraded, err := s.orders.Update(ctx, func(items []domain.Order) ([]domain.Order, error) {
		return append(items, order), nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record order", "listing_id", listing.ID)
	} else if degraded {
		s.LogWarn(ctx, "Orders collection not persisted durably", "order_id", order.ID)
	}
	return &order
}

// CancelListing transitions active -> cancelled. Only the seller may
// cancel, and terminal listings never transition again.
func (s *MarketplaceService) CancelListing(ctx context.Context, listingID, sellerAccountKey string) (*domain.Listing, error) {
	sellerKey := domain.NormalizeAccountKey(sellerAccountKey)

	unlock := s.locks.Lock(listingID)
	defer unlock()

	var cancelled *domain.Listing
	degraded, err := s.listings.Update(ctx, func(items []domain.Listing) ([]domain.Listing, error) {
		for i := range items {
			if items[i].ID != listingID {
				continue
			}
			if items[i].SellerAccountKey != sellerKey {
				return nil, fmt.Errorf("listing %s belongs to another seller: %w", listingID, apperrors.ErrForbidden)
			}
			if items[i].Status != domain.ListingActive {
				return nil, fmt.Errorf("listing %s is %s: %w", listingID, items[i].Status, apperrors.ErrListingUnavailable)
			}
			items[i].Status = domain.ListingCancelled
			items[i].UpdatedAt = time.Now().UTC()
			l := items[i]
			cancelled = &l
			return items, nil
		}
		return nil, fmt.Errorf("listing %s: %w", listingID, apperrors.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	if degraded {
		s.LogWarn(ctx, "Listings collection not persisted durably", "listing_id", listingID)
	}

	s.LogInfo(ctx, "Listing cancelled", "listing_id", listingID, "seller", sellerKey)
	return cancelled, nil
}

// ListOrders returns orders for the given buyer account; an empty account
// key returns everything.
func (s *MarketplaceService) ListOrders(_ context.Context, accountKey string) ([]domain.Order, error) {
	accountKey = domain.NormalizeAccountKey(accountKey)

	var out []domain.Order
	s.orders.View(func(items []domain.Order) {
		for _, o := range items {
			if accountKey == "" || o.BuyerAccountKey == accountKey {
				out = append(out, o)
			}
		}
	})
	if out == nil {
		out = []domain.Order{}
	}
	return out, nil
}
