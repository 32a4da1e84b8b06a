package dto

import (
	"time"

	"figurehub/internal/http-api/models"
)

// StartReadingRequest needs figureId or volumeId (or both) plus the volume
// number. The two optional fields are validated here, once, at the boundary.
type StartReadingRequest struct {
	FigureID *string `json:"figureId"`
	VolumeID *string `json:"volumeId"`
	VolumeNo int     `json:"volumeNo" binding:"required,gt=0"`
}

type ContentAssetResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	VolumeNo int     `json:"volumeNo"`
	CoverURL *string `json:"coverUrl"`
	FileURL  *string `json:"fileUrl"`
}

type StartReadingResponse struct {
	JWT          string               `json:"jwt"`
	SessionID    string               `json:"sessionId"`
	ContentAsset ContentAssetResponse `json:"contentAsset"`
}

func FromVolume(volume *models.Volume) ContentAssetResponse {
	return ContentAssetResponse{
		ID:       volume.ID,
		Title:    volume.Title,
		VolumeNo: volume.VolumeNo,
		CoverURL: volume.CoverURL,
		FileURL:  volume.FileURL,
	}
}

type SessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type HeartbeatResponse struct {
	OK        bool      `json:"ok"`
	ExpiresAt time.Time `json:"expiresAt"`
}
