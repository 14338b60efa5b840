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

// ticketHandler handles HTTP requests related to approval tickets.
type ticketHandler struct {
	ticketService portssvc.TicketSvcFacade
}

// newTicketHandler creates a new ticketHandler.
func newTicketHandler(ts portssvc.TicketSvcFacade) *ticketHandler {
	return &ticketHandler{
		ticketService: ts,
	}
}

// registerTicketRoutes registers the public submission route and the
// admin-only review routes.
func registerTicketRoutes(public *gin.RouterGroup, admin *gin.RouterGroup, ticketService portssvc.TicketSvcFacade) {
	h := newTicketHandler(ticketService)

	public.POST("/tickets", h.submitTicket)

	tickets := admin.Group("/tickets")
	{
		tickets.GET("", h.listTickets)
		tickets.GET("/:id", h.getTicket)
		tickets.POST("/:id/approve", h.approveTicket)
		tickets.POST("/:id/reject", h.rejectTicket)
	}
}

// submitTicket godoc
// @Summary Submit an approval ticket
// @Description Opens a pending ticket requesting a token credit backed by an uploaded report
// @Tags tickets
// @Accept  json
// @Produce  json
// @Param   ticket body dto.SubmitTicketRequest true "Ticket details"
// @Success 201 {object} dto.TicketResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to submit ticket"
// @Router /tickets [post]
func (h *ticketHandler) submitTicket(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubmitTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitTicket", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ticket, err := h.ticketService.SubmitTicket(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error submitting ticket", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to submit ticket", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit ticket"})
		}
		return
	}

	logger.Info("Ticket submitted", slog.String("ticket_id", ticket.ID))
	c.JSON(http.StatusCreated, dto.ToTicketResponse(ticket))
}

// listTickets godoc
// @Summary List approval tickets
// @Description Returns tickets, optionally filtered by status
// @Tags tickets
// @Produce  json
// @Param   status query string false "Ticket status filter" Enums(pending, approved, rejected)
// @Success 200 {object} dto.ListTicketsResponse
// @Failure 400 {object} map[string]string "Unknown status value"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list tickets"
// @Security BearerAuth
// @Router /tickets [get]
func (h *ticketHandler) listTickets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTicketsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var status domain.TicketStatus
	switch params.Status {
	case "":
		status = ""
	case string(domain.TicketPending), string(domain.TicketApproved), string(domain.TicketRejected):
		status = domain.TicketStatus(params.Status)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + params.Status})
		return
	}

	tickets, err := h.ticketService.ListTickets(c.Request.Context(), status)
	if err != nil {
		logger.Error("Failed to list tickets", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tickets"})
		return
	}

	c.JSON(http.StatusOK, dto.ListTicketsResponse{Tickets: dto.ToTicketResponses(tickets)})
}

// getTicket godoc
// @Summary Get a ticket by ID
// @Tags tickets
// @Produce  json
// @Param   id path string true "Ticket ID"
// @Success 200 {object} dto.TicketResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ticket not found"
// @Security BearerAuth
// @Router /tickets/{id} [get]
func (h *ticketHandler) getTicket(c *gin.Context) {
	ticketID := c.Param("id")

	ticket, err := h.ticketService.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get ticket",
			slog.String("ticket_id", ticketID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ticket"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

// approveTicket godoc
// @Summary Approve a ticket
// @Description Transitions the ticket to approved and credits the tokens to its account
// @Tags tickets
// @Accept  json
// @Produce  json
// @Param   id path string true "Ticket ID"
// @Param   approval body dto.ApproveTicketRequest true "Approval details"
// @Success 200 {object} dto.TicketResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ticket not found"
// @Failure 409 {object} map[string]string "Ticket already resolved"
// @Failure 500 {object} map[string]string "Failed to approve ticket"
// @Security BearerAuth
// @Router /tickets/{id}/approve [post]
func (h *ticketHandler) approveTicket(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ticketID := c.Param("id")

	var req dto.ApproveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApproveTicket", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		logger.Error("Admin ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticket, err := h.ticketService.ApproveTicket(c.Request.Context(), ticketID, adminID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidSignature):
			logger.Warn("Validation error approving ticket", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Ticket already resolved", slog.String("ticket_id", ticketID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to approve ticket", slog.String("ticket_id", ticketID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve ticket"})
		}
		return
	}

	logger.Info("Ticket approved", slog.String("ticket_id", ticketID))
	c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

// rejectTicket godoc
// @Summary Reject a ticket
// @Description Transitions the ticket to rejected with the admin's reason; no tokens are credited
// @Tags tickets
// @Accept  json
// @Produce  json
// @Param   id path string true "Ticket ID"
// @Param   rejection body dto.RejectTicketRequest true "Rejection details"
// @Success 200 {object} dto.TicketResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Ticket not found"
// @Failure 409 {object} map[string]string "Ticket already resolved"
// @Failure 500 {object} map[string]string "Failed to reject ticket"
// @Security BearerAuth
// @Router /tickets/{id}/reject [post]
func (h *ticketHandler) rejectTicket(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ticketID := c.Param("id")

	var req dto.RejectTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectTicket", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		logger.Error("Admin ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticket, err := h.ticketService.RejectTicket(c.Request.Context(), ticketID, adminID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Ticket already resolved", slog.String("ticket_id", ticketID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reject ticket", slog.String("ticket_id", ticketID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject ticket"})
		}
		return
	}

	logger.Info("Ticket rejected", slog.String("ticket_id", ticketID))
	c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}
