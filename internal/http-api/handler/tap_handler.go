package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"figurehub/internal/http-api/dto"
	"figurehub/internal/http-api/middleware"
	"figurehub/internal/http-api/service"
)

type TapHandler struct {
	svc service.TapService
}

func NewTapHandler(svc service.TapService) *TapHandler {
	return &TapHandler{svc: svc}
}

func (h *TapHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Tap)
}

// Tap resolves a signed NFC tap link into an outcome for the client.
func (h *TapHandler) Tap(c *gin.Context) {
	var query dto.TapQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parameters"})
		return
	}

	timestamp, err := strconv.ParseInt(query.Timestamp, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parameters"})
		return
	}

	var userID *string
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.svc.Resolve(ctx, query.TagUID, timestamp, query.Signature, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTapExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "tap link has expired"})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid tap link"})
		case errors.Is(err, service.ErrFigureNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "figure not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.FromTapResult(result))
}
