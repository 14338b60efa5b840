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

// balanceHandler handles HTTP requests related to account balances.
type balanceHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newBalanceHandler creates a new balanceHandler.
func newBalanceHandler(ls portssvc.LedgerSvcFacade) *balanceHandler {
	return &balanceHandler{
		ledgerService: ls,
	}
}

// registerBalanceRoutes registers the public balance read routes and the
// admin-only store route.
func registerBalanceRoutes(public *gin.RouterGroup, admin *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newBalanceHandler(ledgerService)

	balance := public.Group("/balance")
	{
		balance.GET("/email/:email", h.getBalanceByEmail)
		balance.GET("/email/:email/transactions", h.listTransactions)
		balance.GET("/:userID", h.getBalanceByExternalID)
	}

	admin.POST("/balance/store", h.storeBalance)
}

// storeBalance godoc
// @Summary Apply a balance delta to an account
// @Description Applies a signed token/secondary delta to the account, creating it on first use
// @Tags balance
// @Accept  json
// @Produce  json
// @Param   delta body dto.StoreBalanceRequest true "Balance delta"
// @Success 200 {object} dto.SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Delta would make a balance negative"
// @Failure 500 {object} map[string]string "Failed to store balance"
// @Security BearerAuth
// @Router /balance/store [post]
func (h *balanceHandler) storeBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.StoreBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for StoreBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		logger.Error("Admin ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	logger = logger.With(slog.String("account_key", req.AccountKey), slog.String("admin_id", adminID))

	if req.ExternalID != "" || req.ExternalWallet != "" {
		if _, err := h.ledgerService.SetExternalRefs(c.Request.Context(), req.AccountKey, req.ExternalID, req.ExternalWallet); err != nil {
			logger.Warn("Failed to record external refs", slog.String("error", err.Error()))
		}
	}

	snapshot, err := h.ledgerService.ApplyDelta(c.Request.Context(), req.AccountKey,
		req.TokenDelta, req.SecondaryDelta,
		domain.Provenance{Note: req.Note, Signature: req.Signature, TicketID: req.TicketID})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidSignature), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error storing balance", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			logger.Warn("Delta rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrStorageUnavailable):
			logger.Error("Storage unavailable storing balance", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		default:
			logger.Error("Failed to store balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store balance"})
		}
		return
	}

	logger.Info("Balance stored", slog.Bool("degraded", snapshot.Degraded))
	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}

// getBalanceByEmail godoc
// @Summary Get an account snapshot by email
// @Description Returns the latest balance snapshot; unknown accounts get the default snapshot
// @Tags balance
// @Produce  json
// @Param   email path string true "Account email"
// @Success 200 {object} dto.SnapshotResponse
// @Failure 500 {object} map[string]string "Failed to get balance"
// @Router /balance/email/{email} [get]
func (h *balanceHandler) getBalanceByEmail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email := c.Param("email")

	snapshot, err := h.ledgerService.GetSnapshot(c.Request.Context(), email)
	if err != nil {
		logger.Error("Failed to get balance", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}

// getBalanceByExternalID godoc
// @Summary Get an account snapshot by external user id
// @Description Resolves the account through the externalID recorded on its snapshots
// @Tags balance
// @Produce  json
// @Param   userID path string true "External user ID"
// @Success 200 {object} dto.SnapshotResponse
// @Failure 404 {object} map[string]string "No account linked to this id"
// @Failure 500 {object} map[string]string "Failed to get balance"
// @Router /balance/{userID} [get]
func (h *balanceHandler) getBalanceByExternalID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	snapshot, err := h.ledgerService.GetSnapshotByExternalID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No account linked to this id"})
			return
		}
		logger.Error("Failed to get balance by external id", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}

// listTransactions godoc
// @Summary List an account's transaction history
// @Description Returns the append-only transaction history from the latest snapshot
// @Tags balance
// @Produce  json
// @Param   email path string true "Account email"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /balance/email/{email}/transactions [get]
func (h *balanceHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email := c.Param("email")

	snapshot, err := h.ledgerService.GetSnapshot(c.Request.Context(), email)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	txs := make([]dto.TransactionResponse, len(snapshot.Transactions))
	for i, tx := range snapshot.Transactions {
		txs[i] = dto.ToTransactionResponse(tx)
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		AccountKey:   snapshot.AccountKey,
		Transactions: txs,
	})
}
