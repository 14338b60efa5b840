package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	"github.com/credexa/carbon_ledger_app/internal/core/domain"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
	"github.com/credexa/carbon_ledger_app/internal/dto"
	"github.com/credexa/carbon_ledger_app/internal/middleware"
)

// marketplaceHandler handles HTTP requests related to listings and orders.
type marketplaceHandler struct {
	marketplaceService portssvc.MarketplaceSvcFacade
}

// newMarketplaceHandler creates a new marketplaceHandler.
func newMarketplaceHandler(ms portssvc.MarketplaceSvcFacade) *marketplaceHandler {
	return &marketplaceHandler{
		marketplaceService: ms,
	}
}

// registerMarketplaceRoutes registers routes related to the marketplace.
func registerMarketplaceRoutes(rg *gin.RouterGroup, marketplaceService portssvc.MarketplaceSvcFacade) {
	h := newMarketplaceHandler(marketplaceService)

	marketplace := rg.Group("/marketplace")
	{
		marketplace.POST("/list", h.createListing)
		marketplace.GET("/listings", h.listListings)
		marketplace.POST("/listings/:id/cancel", h.cancelListing)
		marketplace.POST("/buy", h.buy)
		marketplace.GET("/orders", h.listOrders)
	}
}

// createListing godoc
// @Summary Create a marketplace listing
// @Description Lists a token quantity for sale at a secondary-currency price
// @Tags marketplace
// @Accept  json
// @Produce  json
// @Param   listing body dto.CreateListingRequest true "Listing details"
// @Success 201 {object} dto.ListingResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Seller does not hold the offered tokens"
// @Failure 500 {object} map[string]string "Failed to create listing"
// @Router /marketplace/list [post]
func (h *marketplaceHandler) createListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateListing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	listing, err := h.marketplaceService.CreateListing(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidSignature):
			logger.Warn("Validation error creating listing", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			logger.Warn("Seller balance too low for listing", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create listing", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToListingResponse(listing))
}

// listListings godoc
// @Summary List marketplace listings
// @Description Returns listings filtered by status (default active); status=all returns everything
// @Tags marketplace
// @Produce  json
// @Param   status query string false "Listing status filter" Enums(active, sold, cancelled, all)
// @Success 200 {object} dto.ListListingsResponse
// @Failure 400 {object} map[string]string "Unknown status value"
// @Failure 500 {object} map[string]string "Failed to list listings"
// @Router /marketplace/listings [get]
func (h *marketplaceHandler) listListings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListListingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var status domain.ListingStatus
	switch params.Status {
	case "all":
		status = ""
	case string(domain.ListingActive), string(domain.ListingSold), string(domain.ListingCancelled):
		status = domain.ListingStatus(params.Status)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + params.Status})
		return
	}

	listings, err := h.marketplaceService.ListListings(c.Request.Context(), status)
	if err != nil {
		logger.Error("Failed to list listings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list listings"})
		return
	}

	c.JSON(http.StatusOK, dto.ListListingsResponse{Listings: dto.ToListingResponses(listings)})
}

// buy godoc
// @Summary Buy a listing
// @Description Settles the purchase: tokens to the buyer, price to the seller, listing to sold
// @Tags marketplace
// @Accept  json
// @Produce  json
// @Param   purchase body dto.BuyRequest true "Purchase details"
// @Success 200 {object} dto.BuyResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Listing not found"
// @Failure 409 {object} map[string]string "Listing unavailable, self trade, or insufficient balance"
// @Failure 500 {object} map[string]string "Failed to execute purchase"
// @Router /marketplace/buy [post]
func (h *marketplaceHandler) buy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Buy", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("listing_id", req.ListingID), slog.String("buyer", req.BuyerAccountKey))

	result, err := h.marketplaceService.Buy(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidSignature):
			logger.Warn("Validation error on purchase", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrListingUnavailable),
			errors.Is(err, apperrors.ErrSelfTrade),
			errors.Is(err, apperrors.ErrInsufficientBalance):
			logger.Warn("Purchase rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to execute purchase", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute purchase"})
		}
		return
	}

	logger.Info("Purchase completed", slog.String("order_id", result.Order.ID))
	c.JSON(http.StatusOK, dto.BuyResponse{
		Listing:        dto.ToListingResponse(result.Listing),
		Order:          dto.ToOrderResponse(result.Order),
		BuyerSnapshot:  dto.ToSnapshotResponse(result.BuyerSnapshot),
		SellerSnapshot: dto.ToSnapshotResponse(result.SellerSnapshot),
	})
}

// cancelListing godoc
// @Summary Cancel a listing
// @Description Transitions an active listing to cancelled; only the seller may cancel
// @Tags marketplace
// @Accept  json
// @Produce  json
// @Param   id path string true "Listing ID"
// @Param   cancellation body dto.CancelListingRequest true "Seller identification"
// @Success 200 {object} dto.ListingResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 403 {object} map[string]string "Caller is not the seller"
// @Failure 404 {object} map[string]string "Listing not found"
// @Failure 409 {object} map[string]string "Listing is not active"
// @Failure 500 {object} map[string]string "Failed to cancel listing"
// @Router /marketplace/listings/{id}/cancel [post]
func (h *marketplaceHandler) cancelListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	listingID := c.Param("id")

	var req dto.CancelListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelListing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	listing, err := h.marketplaceService.CancelListing(c.Request.Context(), listingID, req.SellerAccountKey)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Cancel rejected, caller is not the seller", slog.String("listing_id", listingID))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrListingUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to cancel listing", slog.String("listing_id", listingID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel listing"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

// listOrders godoc
// @Summary List orders
// @Description Returns orders, optionally filtered by buyer account key
// @Tags marketplace
// @Produce  json
// @Param   accountKey query string false "Buyer account key filter"
// @Success 200 {object} dto.ListOrdersResponse
// @Failure 500 {object} map[string]string "Failed to list orders"
// @Router /marketplace/orders [get]
func (h *marketplaceHandler) listOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListOrdersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	orders, err := h.marketplaceService.ListOrders(c.Request.Context(), params.AccountKey)
	if err != nil {
		logger.Error("Failed to list orders", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, dto.ListOrdersResponse{Orders: dto.ToOrderResponses(orders)})
}
