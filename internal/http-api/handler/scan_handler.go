package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"figurehub/internal/http-api/dto"
	"figurehub/internal/http-api/middleware"
	"figurehub/internal/http-api/service"
)

// ScanHandler serves the claim flow: transaction preview and the one-time
// claim itself.
type ScanHandler struct {
	svc    service.ClaimService
	tokens service.TokenService
}

func NewScanHandler(svc service.ClaimService, tokens service.TokenService) *ScanHandler {
	return &ScanHandler{svc: svc, tokens: tokens}
}

func (h *ScanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/transaction/:transactionId", h.TransactionInfo)
	rg.POST("/claim", middleware.RequireAuth(h.tokens), h.Claim)
}

// TransactionInfo previews claimability without mutating anything.
func (h *ScanHandler) TransactionInfo(c *gin.Context) {
	transactionID := c.Param("transactionId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	info, err := h.svc.TransactionInfo(ctx, transactionID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	transaction := info.Transaction
	response := dto.TransactionInfoResponse{
		OK:        info.Reason == "",
		Claimable: info.Claimable,
		Error:     info.Reason,
		Transaction: dto.TransactionSummary{
			ID:        transaction.ID,
			Status:    transaction.Status,
			ExpiresAt: transaction.ExpiresAt,
		},
	}
	if transaction.Figure != nil {
		response.Figure = dto.FromClaimFigure(transaction.Figure)
		if transaction.Figure.Series != nil {
			response.Series = &dto.SeriesSummary{
				ID:       transaction.Figure.Series.ID,
				Title:    transaction.Figure.Series.Title,
				CoverURL: transaction.Figure.Series.CoverURL,
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// Claim activates the transaction for the authenticated purchaser.
func (h *ScanHandler) Claim(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.svc.Claim(ctx, req.TransactionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound),
			errors.Is(err, service.ErrTransactionExpired),
			errors.Is(err, service.ErrNotPurchaser):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ClaimResponse{
		OK:       true,
		Status:   result.Status,
		Figure:   dto.FromClaimFigure(result.Figure),
		SeriesID: result.SeriesID,
	})
}
