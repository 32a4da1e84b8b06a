package dto

import (
	"time"

	"figurehub/internal/http-api/models"
)

type ClaimRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

type ClaimFigureResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	ImageURL    *string `json:"image_url,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       int     `json:"price"`
}

type ClaimResponse struct {
	OK       bool                `json:"ok"`
	Status   string              `json:"status"`
	Figure   ClaimFigureResponse `json:"figure"`
	SeriesID string              `json:"seriesId"`
}

func FromClaimFigure(figure *models.Figure) ClaimFigureResponse {
	return ClaimFigureResponse{
		ID:          figure.ID,
		Title:       figure.Title,
		ImageURL:    figure.ImageURL,
		Description: figure.Description,
		Price:       figure.Price,
	}
}

type TransactionSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SeriesSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	CoverURL *string `json:"coverUrl,omitempty"`
}

// TransactionInfoResponse previews claimability without mutating anything.
type TransactionInfoResponse struct {
	OK          bool                `json:"ok"`
	Claimable   bool                `json:"claimable"`
	Error       string              `json:"error,omitempty"`
	Transaction TransactionSummary  `json:"transaction"`
	Figure      ClaimFigureResponse `json:"figure"`
	Series      *SeriesSummary      `json:"series,omitempty"`
}
