package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/repository"
)

var (
	ErrMissingTarget   = errors.New("either figureId or volumeId must be provided")
	ErrNoReadingRights = errors.New("no reading rights or volume ownership found")
	ErrContentNotFound = errors.New("content not found")
	ErrSessionNotFound = errors.New("session not found")
)

// ReadingSession is ephemeral and in-memory only. A process restart loses
// all sessions; clients restart them on the next heartbeat failure.
type ReadingSession struct {
	SessionID string
	UserID    string
	FigureID  *string
	VolumeNo  int
	ExpiresAt time.Time
}

// StartResult carries the short-lived content token, the session handle and
// the resolved content asset.
type StartResult struct {
	Token     string
	SessionID string
	Volume    *models.Volume
}

// ReadingService is the session registry: it checks rights once at start,
// then tracks liveness purely in memory. Heartbeats slide expiry and do not
// re-check the underlying rights; a revoked right runs out at natural
// expiry or when the new holder's start evicts the session.
type ReadingService interface {
	Start(ctx context.Context, userID string, figureID, volumeID *string, volumeNo int) (*StartResult, error)
	Heartbeat(sessionID string) (time.Time, error)
	Stop(ctx context.Context, sessionID, userID string) error
	StartSweeper(ctx context.Context, interval time.Duration)
}

type readingService struct {
	rights     repository.ReadRightsRepository
	figures    repository.FigureRepository
	volumes    repository.VolumeRepository
	ownerships repository.OwnershipRepository
	auditLogs  repository.AuditLogRepository
	tokens     TokenService
	sessionTTL time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*ReadingSession
	now      func() time.Time
}

func NewReadingService(
	rights repository.ReadRightsRepository,
	figures repository.FigureRepository,
	volumes repository.VolumeRepository,
	ownerships repository.OwnershipRepository,
	auditLogs repository.AuditLogRepository,
	tokens TokenService,
	sessionTTL time.Duration,
	logger *slog.Logger,
) ReadingService {
	return &readingService{
		rights:     rights,
		figures:    figures,
		volumes:    volumes,
		ownerships: ownerships,
		auditLogs:  auditLogs,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
		sessions:   make(map[string]*ReadingSession),
		now:        time.Now,
	}
}

func (s *readingService) Start(ctx context.Context, userID string, figureID, volumeID *string, volumeNo int) (*StartResult, error) {
	if figureID == nil && volumeID == nil {
		return nil, ErrMissingTarget
	}

	var contentAsset *models.Volume
	hasPermission := false

	// Path 1: figure rights (owner, or borrower inside the loan window).
	if figureID != nil {
		rights, err := s.rights.GetByFigureID(ctx, *figureID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if rights != nil {
			now := s.now()
			if rights.LoanLapsed(now) {
				s.repairLapsedLoan(ctx, rights)
			}
			if rights.AllowsReading(userID, now) {
				hasPermission = true
				figure, err := s.figures.GetByID(ctx, *figureID)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return nil, ErrContentNotFound
					}
					return nil, err
				}
				volume, err := s.volumes.GetBySeriesAndNo(ctx, figure.SeriesID, volumeNo)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, err
				}
				contentAsset = volume
			}
		}
	}

	// Path 2: direct volume ownership.
	if !hasPermission {
		targetVolumeID := volumeID
		if targetVolumeID == nil && figureID != nil {
			figure, err := s.figures.GetByID(ctx, *figureID)
			if err == nil {
				if volume, err := s.volumes.GetBySeriesAndNo(ctx, figure.SeriesID, volumeNo); err == nil {
					targetVolumeID = &volume.ID
				}
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		}
		if targetVolumeID != nil {
			ownership, err := s.ownerships.GetByUserAndVolume(ctx, userID, *targetVolumeID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			if ownership != nil {
				hasPermission = true
				contentAsset = ownership.Volume
			}
		}
	}

	if !hasPermission {
		return nil, ErrNoReadingRights
	}
	if contentAsset == nil {
		return nil, ErrContentNotFound
	}

	sessionID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	token, err := s.tokens.IssueContentAccess(userID, figureID, volumeNo)
	if err != nil {
		return nil, err
	}

	// Eviction and insert happen under one lock so two racing starts for
	// the same figure cannot both keep a live session.
	s.mu.Lock()
	if figureID != nil {
		for id, session := range s.sessions {
			if session.FigureID != nil && *session.FigureID == *figureID && session.UserID != userID {
				delete(s.sessions, id)
				s.logger.Info("evicted conflicting reading session", "session_id", id, "figure_id", *figureID)
			}
		}
	}
	s.sessions[sessionID] = &ReadingSession{
		SessionID: sessionID,
		UserID:    userID,
		FigureID:  figureID,
		VolumeNo:  volumeNo,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	s.mu.Unlock()

	s.audit(ctx, &userID, figureID, "read_start", map[string]any{
		"volumeNo":  volumeNo,
		"volumeId":  contentAsset.ID,
		"sessionId": sessionID,
	})

	return &StartResult{Token: token, SessionID: sessionID, Volume: contentAsset}, nil
}

func (s *readingService) Heartbeat(sessionID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return time.Time{}, ErrSessionNotFound
	}
	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, sessionID)
		return time.Time{}, ErrSessionNotFound
	}

	session.ExpiresAt = s.now().Add(s.sessionTTL)
	return session.ExpiresAt, nil
}

// Stop is idempotent: stopping an unknown or already-stopped session is
// success, not an error.
func (s *readingService) Stop(ctx context.Context, sessionID, userID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok || s.now().After(session.ExpiresAt) {
		return nil
	}

	s.audit(ctx, &userID, session.FigureID, "read_stop", map[string]any{
		"volumeNo":  session.VolumeNo,
		"sessionId": sessionID,
	})
	return nil
}

// StartSweeper evicts expired sessions periodically until ctx is done.
// Expired entries are also treated as absent on lookup, so the sweep only
// reclaims memory.
func (s *readingService) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *readingService) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

// repairLapsedLoan lazily reverts a run-out loan to owner state so the
// owner regains access without an explicit end call.
func (s *readingService) repairLapsedLoan(ctx context.Context, rights *models.ReadRights) {
	figure, err := s.figures.GetByID(ctx, rights.FigureID)
	if err != nil || figure.OwnerUserID == nil {
		return
	}
	rights.EndLoan(*figure.OwnerUserID)
	if err := s.rights.Save(ctx, rights); err != nil {
		s.logger.Error("failed to end lapsed loan", "figure_id", rights.FigureID, "error", err)
	}
}

func (s *readingService) audit(ctx context.Context, userID, figureID *string, action string, meta map[string]any) {
	raw, _ := json.Marshal(meta)
	if err := s.auditLogs.Create(ctx, &models.AuditLog{
		UserID:   userID,
		FigureID: figureID,
		Action:   action,
		Meta:     string(raw),
	}); err != nil {
		s.logger.Error("failed to write audit log", "action", action, "error", err)
	}
}
