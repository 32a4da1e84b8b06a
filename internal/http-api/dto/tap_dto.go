package dto

import "figurehub/internal/http-api/service"

// TapQuery is the signed tap link's query string. ts stays a string here
// and is parsed after shape validation so a non-numeric value is a clean
// 400 instead of a bind panic.
type TapQuery struct {
	TagUID    string `form:"u" binding:"required"`
	Signature string `form:"sig" binding:"required"`
	Timestamp string `form:"ts" binding:"required,numeric"`
}

type TapFigureResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SeriesID    string  `json:"seriesId"`
	SeriesTitle string  `json:"seriesTitle"`
	ImageURL    *string `json:"imageUrl"`
}

type TapLatestVolumeResponse struct {
	VolumeID    string `json:"volumeId"`
	VolumeNo    int    `json:"volumeNo"`
	CurrentPage int    `json:"currentPage"`
}

type TapResponse struct {
	OK           bool                     `json:"ok"`
	Action       string                   `json:"action"`
	Figure       TapFigureResponse        `json:"figure"`
	LatestVolume *TapLatestVolumeResponse `json:"latestVolume,omitempty"`
}

func FromTapResult(result *service.TapResult) TapResponse {
	response := TapResponse{
		OK:     true,
		Action: result.Action,
		Figure: TapFigureResponse{
			ID:          result.Figure.ID,
			Title:       result.Figure.Title,
			SeriesID:    result.Figure.SeriesID,
			SeriesTitle: result.Figure.SeriesTitle,
			ImageURL:    result.Figure.ImageURL,
		},
	}
	if result.LatestVolume != nil {
		response.LatestVolume = &TapLatestVolumeResponse{
			VolumeID:    result.LatestVolume.VolumeID,
			VolumeNo:    result.LatestVolume.VolumeNo,
			CurrentPage: result.LatestVolume.CurrentPage,
		}
	}
	return response
}
