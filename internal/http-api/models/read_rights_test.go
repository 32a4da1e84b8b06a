package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshRights() *ReadRights {
	return &ReadRights{
		ID:           "rights-id",
		FigureID:     "figure-id",
		ActiveUserID: "owner-id",
		State:        RightsStateOwner,
	}
}

func TestOfferLoan(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	end := now.AddDate(0, 0, 7)

	require.NoError(t, rights.OfferLoan("token", now, end))

	// Offer alone does not flip the state; the owner keeps access
	assert.Equal(t, RightsStateOwner, rights.State)
	require.NotNil(t, rights.LoanToken)
	assert.Equal(t, "token", *rights.LoanToken)
	assert.True(t, rights.AllowsReading("owner-id", now))
}

func TestOfferLoan_BlockedWhileLoaned(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))
	require.NoError(t, rights.ActivateLoan("token", "borrower-id", now))

	err := rights.OfferLoan("another", now, now.AddDate(0, 0, 7))
	assert.ErrorIs(t, err, ErrNotOwnerState)
}

func TestOfferLoan_BlockedByOutstandingOffer(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))

	err := rights.OfferLoan("another", now.Add(time.Hour), now.AddDate(0, 0, 14))
	assert.ErrorIs(t, err, ErrLoanOutstanding)
}

func TestActivateLoan(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))

	require.NoError(t, rights.ActivateLoan("token", "borrower-id", now.Add(time.Hour)))

	assert.Equal(t, RightsStateLoaned, rights.State)
	assert.Equal(t, "borrower-id", rights.ActiveUserID)
	// Single use: the token is consumed on redemption
	assert.Nil(t, rights.LoanToken)
	assert.True(t, rights.AllowsReading("borrower-id", now.Add(2*time.Hour)))
	assert.False(t, rights.AllowsReading("owner-id", now.Add(2*time.Hour)))
}

func TestActivateLoan_TokenMismatch(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))

	err := rights.ActivateLoan("wrong", "borrower-id", now)
	assert.ErrorIs(t, err, ErrLoanTokenMismatch)
	assert.Equal(t, RightsStateOwner, rights.State)
}

func TestActivateLoan_OwnerCannotBorrow(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))

	err := rights.ActivateLoan("token", "owner-id", now)
	assert.ErrorIs(t, err, ErrBorrowIsOwner)
}

func TestActivateLoan_WindowClosed(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))

	err := rights.ActivateLoan("token", "borrower-id", now.AddDate(0, 0, 8))
	assert.ErrorIs(t, err, ErrLoanWindowClosed)
}

func TestActivateLoan_NoOffer(t *testing.T) {
	rights := freshRights()

	err := rights.ActivateLoan("token", "borrower-id", time.Now())
	assert.ErrorIs(t, err, ErrLoanTokenMismatch)
}

func TestEndLoan(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))
	require.NoError(t, rights.ActivateLoan("token", "borrower-id", now))

	rights.EndLoan("owner-id")

	assert.Equal(t, RightsStateOwner, rights.State)
	assert.Equal(t, "owner-id", rights.ActiveUserID)
	assert.Nil(t, rights.LoanToken)
	assert.Nil(t, rights.LoanStart)
	assert.Nil(t, rights.LoanEnd)
	assert.False(t, rights.AllowsReading("borrower-id", now))
}

func TestEndLoan_ClearsUnredeemedOffer(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))

	rights.EndLoan("owner-id")

	assert.Nil(t, rights.LoanToken)
	require.NoError(t, rights.OfferLoan("fresh", now, now.AddDate(0, 0, 7)))
}

func TestLoanLapsed(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))
	require.NoError(t, rights.ActivateLoan("token", "borrower-id", now))

	assert.False(t, rights.LoanLapsed(now.AddDate(0, 0, 6)))
	assert.True(t, rights.LoanLapsed(now.AddDate(0, 0, 8)))
}

func TestAllowsReading_BorrowerOutsideWindow(t *testing.T) {
	rights := freshRights()
	now := time.Now()
	require.NoError(t, rights.OfferLoan("token", now, now.AddDate(0, 0, 7)))
	require.NoError(t, rights.ActivateLoan("token", "borrower-id", now))

	assert.True(t, rights.AllowsReading("borrower-id", now.AddDate(0, 0, 7)))
	assert.False(t, rights.AllowsReading("borrower-id", now.AddDate(0, 0, 8)))
	assert.False(t, rights.AllowsReading("someone-else", now))
}
