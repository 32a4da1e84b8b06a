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

type ReadHandler struct {
	svc    service.ReadingService
	tokens service.TokenService
}

func NewReadHandler(svc service.ReadingService, tokens service.TokenService) *ReadHandler {
	return &ReadHandler{svc: svc, tokens: tokens}
}

func (h *ReadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.RequireAuth(h.tokens))
	rg.POST("/start", h.Start)
	rg.POST("/heartbeat", h.Heartbeat)
	rg.POST("/stop", h.Stop)
}

func (h *ReadHandler) Start(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.StartReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.svc.Start(ctx, userID, req.FigureID, req.VolumeID, req.VolumeNo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingTarget):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoReadingRights):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrContentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.StartReadingResponse{
		JWT:          result.Token,
		SessionID:    result.SessionID,
		ContentAsset: dto.FromVolume(result.Volume),
	})
}

func (h *ReadHandler) Heartbeat(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expiresAt, err := h.svc.Heartbeat(req.SessionID)
	if err != nil {
		// Not fatal: the client restarts the session
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, dto.HeartbeatResponse{OK: true, ExpiresAt: expiresAt})
}

func (h *ReadHandler) Stop(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Always succeeds; stopping twice is not an error
	if err := h.svc.Stop(ctx, req.SessionID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
