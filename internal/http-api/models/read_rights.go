package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadRights state values. Exactly one of the two holds at any time.
const (
	RightsStateOwner  = "owner"
	RightsStateLoaned = "loaned"
)

var (
	ErrLoanOutstanding   = errors.New("figure already has an outstanding loan")
	ErrNotOwnerState     = errors.New("figure is not in owner state")
	ErrNotLoanedState    = errors.New("figure is not loaned")
	ErrLoanTokenMismatch = errors.New("loan token does not match")
	ErrLoanWindowClosed  = errors.New("loan window is not open")
	ErrBorrowIsOwner     = errors.New("owner cannot borrow their own figure")
)

// ReadRights is the per-figure access control record. One row per figure,
// created at claim time in owner state. The transition methods below are the
// only mutators, so a row can never end up in an inconsistent shape
// (e.g. owner state with a live loan window).
type ReadRights struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	FigureID     string     `gorm:"type:uuid;uniqueIndex;not null" json:"figure_id"`
	ActiveUserID string     `gorm:"type:uuid;not null" json:"active_user_id"`
	State        string     `gorm:"default:'owner';not null" json:"state"`
	LoanToken    *string    `gorm:"index" json:"-"`
	LoanStart    *time.Time `json:"loan_start,omitempty"`
	LoanEnd      *time.Time `json:"loan_end,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (r *ReadRights) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (ReadRights) TableName() string {
	return "read_rights"
}

// OfferLoan records a pending loan window and its single-use token. The row
// stays in owner state until the borrower redeems the token. At most one
// outstanding loan per figure: a previous window still in the future blocks a
// new offer.
func (r *ReadRights) OfferLoan(token string, start, end time.Time) error {
	if r.State != RightsStateOwner {
		return ErrNotOwnerState
	}
	if r.LoanEnd != nil && r.LoanEnd.After(start) {
		return ErrLoanOutstanding
	}
	r.LoanToken = &token
	r.LoanStart = &start
	r.LoanEnd = &end
	return nil
}

// ActivateLoan redeems the loan token and hands read access to the borrower.
func (r *ReadRights) ActivateLoan(token, borrowerID string, now time.Time) error {
	if r.State != RightsStateOwner {
		return ErrNotOwnerState
	}
	if r.LoanToken == nil || *r.LoanToken != token {
		return ErrLoanTokenMismatch
	}
	if borrowerID == r.ActiveUserID {
		return ErrBorrowIsOwner
	}
	if r.LoanStart == nil || r.LoanEnd == nil || now.Before(*r.LoanStart) || now.After(*r.LoanEnd) {
		return ErrLoanWindowClosed
	}
	r.State = RightsStateLoaned
	r.ActiveUserID = borrowerID
	r.LoanToken = nil
	return nil
}

// EndLoan reverts the row to owner state, clearing any loan window or
// un-redeemed offer. ownerID comes from the figure record.
func (r *ReadRights) EndLoan(ownerID string) {
	r.State = RightsStateOwner
	r.ActiveUserID = ownerID
	r.LoanToken = nil
	r.LoanStart = nil
	r.LoanEnd = nil
}

// LoanLapsed reports whether a redeemed loan has run out its window.
func (r *ReadRights) LoanLapsed(now time.Time) bool {
	return r.State == RightsStateLoaned && r.LoanEnd != nil && now.After(*r.LoanEnd)
}

// AllowsReading reports whether userID may start a reading session for this
// figure right now: the owner while not loaned out, or the borrower inside
// the loan window.
func (r *ReadRights) AllowsReading(userID string, now time.Time) bool {
	switch r.State {
	case RightsStateOwner:
		return r.ActiveUserID == userID
	case RightsStateLoaned:
		return r.ActiveUserID == userID &&
			r.LoanStart != nil && r.LoanEnd != nil &&
			!now.Before(*r.LoanStart) && !now.After(*r.LoanEnd)
	}
	return false
}
