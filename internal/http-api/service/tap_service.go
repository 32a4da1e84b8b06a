package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/repository"
)

var (
	ErrTapExpired       = errors.New("tap link has expired")
	ErrInvalidSignature = errors.New("invalid tap signature")
	ErrFigureNotFound   = errors.New("figure not found")
)

// Tap outcomes.
const (
	TapActionLoginRequired = "login_required"
	TapActionNotOwner      = "not_owner"
	TapActionRedirect      = "redirect_to_series"
)

// TapFigure is the figure summary revealed on a tap. No rights information
// beyond the outcome action itself.
type TapFigure struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SeriesID    string  `json:"seriesId"`
	SeriesTitle string  `json:"seriesTitle"`
	ImageURL    *string `json:"imageUrl"`
}

// TapLatestVolume points the owner back at their most recently read volume.
type TapLatestVolume struct {
	VolumeID    string `json:"volumeId"`
	VolumeNo    int    `json:"volumeNo"`
	CurrentPage int    `json:"currentPage"`
}

type TapResult struct {
	Action       string
	Figure       TapFigure
	LatestVolume *TapLatestVolume
}

// TapService resolves a verified NFC tap into an outcome. Every branch,
// including the failing ones, writes exactly one tap log row.
type TapService interface {
	Resolve(ctx context.Context, tagUID string, timestampMillis int64, signature string, userID *string) (*TapResult, error)
}

type tapService struct {
	nfc        NfcService
	figures    repository.FigureRepository
	ownerships repository.OwnershipRepository
	tapLogs    repository.TapLogRepository
	logger     *slog.Logger
}

func NewTapService(
	nfc NfcService,
	figures repository.FigureRepository,
	ownerships repository.OwnershipRepository,
	tapLogs repository.TapLogRepository,
	logger *slog.Logger,
) TapService {
	return &tapService{
		nfc:        nfc,
		figures:    figures,
		ownerships: ownerships,
		tapLogs:    tapLogs,
		logger:     logger,
	}
}

func (s *tapService) Resolve(ctx context.Context, tagUID string, timestampMillis int64, signature string, userID *string) (*TapResult, error) {
	if !s.nfc.IsTimestampFresh(timestampMillis) {
		s.logTap(ctx, tagUID, signature, timestampMillis, false, nil, nil)
		return nil, ErrTapExpired
	}

	if !s.nfc.Verify(tagUID, timestampMillis, signature) {
		s.logTap(ctx, tagUID, signature, timestampMillis, false, nil, nil)
		return nil, ErrInvalidSignature
	}

	figure, err := s.figures.GetByTagUID(ctx, tagUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Signature checked out but the tag is unknown to the catalog.
			s.logTap(ctx, tagUID, signature, timestampMillis, true, userID, nil)
			return nil, ErrFigureNotFound
		}
		return nil, err
	}

	s.logTap(ctx, tagUID, signature, timestampMillis, true, userID, &figure.ID)

	result := &TapResult{Figure: tapFigureSummary(figure)}

	if userID == nil {
		result.Action = TapActionLoginRequired
		return result, nil
	}

	if figure.OwnerUserID == nil || *figure.OwnerUserID != *userID {
		result.Action = TapActionNotOwner
		return result, nil
	}

	result.Action = TapActionRedirect
	result.LatestVolume = s.latestReadVolume(ctx, *userID, figure.ID)
	return result, nil
}

// latestReadVolume finds the owner's most recently read bundle volume to
// support resume-reading. Nil when nothing has been read yet.
func (s *tapService) latestReadVolume(ctx context.Context, userID, figureID string) *TapLatestVolume {
	ownerships, err := s.ownerships.ListByUserAndFigure(ctx, userID, figureID)
	if err != nil {
		s.logger.Error("failed to resolve latest volume", "figure_id", figureID, "error", err)
		return nil
	}

	var latest *models.VolumeOwnership
	for i := range ownerships {
		o := &ownerships[i]
		if o.LastReadAt == nil {
			continue
		}
		if latest == nil || o.LastReadAt.After(*latest.LastReadAt) {
			latest = o
		}
	}
	if latest == nil || latest.Volume == nil {
		return nil
	}
	return &TapLatestVolume{
		VolumeID:    latest.VolumeID,
		VolumeNo:    latest.Volume.VolumeNo,
		CurrentPage: latest.CurrentPage,
	}
}

// logTap writes the tap log row. A logging failure never masks the tap
// outcome; it is reported and swallowed.
func (s *tapService) logTap(ctx context.Context, tagUID, signature string, timestampMillis int64, verified bool, userID, figureID *string) {
	entry := &models.NfcTapLog{
		TagUID:    tagUID,
		Signature: signature,
		Timestamp: time.UnixMilli(timestampMillis),
		Verified:  verified,
		UserID:    userID,
		FigureID:  figureID,
	}
	if err := s.tapLogs.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write tap log", "tag_uid", tagUID, "error", err)
	}
}

func tapFigureSummary(figure *models.Figure) TapFigure {
	summary := TapFigure{
		ID:       figure.ID,
		Title:    figure.Title,
		SeriesID: figure.SeriesID,
		ImageURL: figure.ImageURL,
	}
	if figure.Series != nil {
		summary.SeriesTitle = figure.Series.Title
	}
	return summary
}
