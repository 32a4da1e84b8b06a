package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"figurehub/internal/http-api/dto"
	"figurehub/internal/http-api/middleware"
	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/service"
)

type LendHandler struct {
	svc    service.LendingService
	tokens service.TokenService
}

func NewLendHandler(svc service.LendingService, tokens service.TokenService) *LendHandler {
	return &LendHandler{svc: svc, tokens: tokens}
}

func (h *LendHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.RequireAuth(h.tokens))
	rg.POST("/start", h.Start)
	rg.POST("/activate", h.Activate)
	rg.POST("/end", h.End)
}

// Start lets the owner offer a loan; the returned token is what the
// borrower redeems.
func (h *LendHandler) Start(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.LoanStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	offer, err := h.svc.Start(ctx, req.FigureID, userID, req.Days, req.Agree)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAgreementRequired),
			errors.Is(err, service.ErrInvalidLoanDays),
			errors.Is(err, models.ErrLoanOutstanding),
			errors.Is(err, models.ErrNotOwnerState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFigureOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrFigureNotFound), errors.Is(err, service.ErrRightsNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.LoanStartResponse{
		OK:        true,
		LoanToken: offer.Token,
		LoanStart: offer.LoanStart,
		LoanEnd:   offer.LoanEnd,
	})
}

// Activate redeems a loan token and hands read access to the borrower.
func (h *LendHandler) Activate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.LoanActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rights, err := h.svc.Activate(ctx, req.Token, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrLoanTokenMismatch),
			errors.Is(err, models.ErrLoanWindowClosed),
			errors.Is(err, models.ErrNotOwnerState),
			errors.Is(err, models.ErrBorrowIsOwner):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	response := dto.LoanActivateResponse{OK: true, FigureID: rights.FigureID}
	if rights.LoanEnd != nil {
		response.LoanEnd = *rights.LoanEnd
	}
	c.JSON(http.StatusOK, response)
}

// End reclaims the figure for the owner.
func (h *LendHandler) End(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.LoanEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.End(ctx, req.FigureID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFigureOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrFigureNotFound), errors.Is(err, service.ErrRightsNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
