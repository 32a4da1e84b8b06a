package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"figurehub/database"
	"figurehub/internal/cache"
	"figurehub/internal/config"
	"figurehub/internal/http-api/handler"
	"figurehub/internal/http-api/middleware"
	"figurehub/internal/http-api/repository"
	"figurehub/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Redis is an optimization for the tap path; the server runs without it
	figureCache, err := cache.NewFigureCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, figure cache disabled", "error", err)
		figureCache = nil
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	figureRepo := repository.NewCachedFigureRepository(repository.NewFigureRepository(db), figureCache)
	volumeRepo := repository.NewVolumeRepository(db)
	ownershipRepo := repository.NewOwnershipRepository(db)
	rightsRepo := repository.NewReadRightsRepository(db)
	tapLogRepo := repository.NewTapLogRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	claimStore := repository.NewClaimStore(db)

	// Services
	nfcService := service.NewNfcService(cfg.NFCSecret, cfg.TapMaxAge)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.IdentityTokenTTL, cfg.ContentTokenTTL)
	authService := service.NewAuthService(userRepo, tokenService)
	tapService := service.NewTapService(nfcService, figureRepo, ownershipRepo, tapLogRepo, logger)
	claimService := service.NewClaimService(claimStore, figureCache, logger)
	lendingService := service.NewLendingService(rightsRepo, figureRepo, cfg.LoanMaxDays, logger)
	readingService := service.NewReadingService(
		rightsRepo, figureRepo, volumeRepo, ownershipRepo, auditRepo,
		tokenService, cfg.ContentTokenTTL, logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readingService.StartSweeper(ctx, time.Minute)

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	tapGroup := api.Group("/tap")
	tapGroup.Use(middleware.RateLimit(cfg.TapRatePerSecond, cfg.TapRateBurst))
	tapGroup.Use(middleware.OptionalAuth(tokenService))
	handler.NewTapHandler(tapService).RegisterRoutes(tapGroup)

	handler.NewScanHandler(claimService, tokenService).RegisterRoutes(api.Group("/scan"))
	handler.NewReadHandler(readingService, tokenService).RegisterRoutes(api.Group("/read"))
	handler.NewLendHandler(lendingService, tokenService).RegisterRoutes(api.Group("/lend"))
	handler.NewAuthHandler(authService, tokenService, cfg.IdentityTokenTTL, cfg.IsProduction()).RegisterRoutes(api.Group("/auth"))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if figureCache != nil {
		figureCache.Close()
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
