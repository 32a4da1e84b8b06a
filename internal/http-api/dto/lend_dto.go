package dto

import "time"

type LoanStartRequest struct {
	FigureID string `json:"figureId" binding:"required"`
	Days     int    `json:"days" binding:"required"`
	Agree    bool   `json:"agree"`
}

type LoanStartResponse struct {
	OK        bool      `json:"ok"`
	LoanToken string    `json:"loanToken"`
	LoanStart time.Time `json:"loanStart"`
	LoanEnd   time.Time `json:"loanEnd"`
}

type LoanActivateRequest struct {
	Token string `json:"token" binding:"required"`
}

type LoanActivateResponse struct {
	OK       bool      `json:"ok"`
	FigureID string    `json:"figureId"`
	LoanEnd  time.Time `json:"loanEnd"`
}

type LoanEndRequest struct {
	FigureID string `json:"figureId" binding:"required"`
}
