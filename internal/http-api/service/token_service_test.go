package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-at-least-32-chars!!"

func newTestTokenService() TokenService {
	return NewTokenService(testJWTSecret, 7*24*time.Hour, 15*time.Minute)
}

func TestIdentityToken_RoundTrip(t *testing.T) {
	tokens := newTestTokenService()

	token, err := tokens.IssueIdentity("user-id")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tokens.VerifyIdentity(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", userID)
}

func TestContentToken_RoundTrip(t *testing.T) {
	tokens := newTestTokenService()
	figureID := "figure-id"

	token, err := tokens.IssueContentAccess("user-id", &figureID, 3)
	require.NoError(t, err)

	claims, err := tokens.VerifyContentAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, 3, claims.VolumeNo)
	require.NotNil(t, claims.FigureID)
	assert.Equal(t, figureID, *claims.FigureID)
}

func TestContentToken_NoFigure(t *testing.T) {
	tokens := newTestTokenService()

	token, err := tokens.IssueContentAccess("user-id", nil, 5)
	require.NoError(t, err)

	claims, err := tokens.VerifyContentAccess(token)
	require.NoError(t, err)
	assert.Nil(t, claims.FigureID)
	assert.Equal(t, 5, claims.VolumeNo)
}

func TestVerifyIdentity_RejectsContentToken(t *testing.T) {
	tokens := newTestTokenService()

	token, err := tokens.IssueContentAccess("user-id", nil, 1)
	require.NoError(t, err)

	_, err = tokens.VerifyIdentity(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyContentAccess_RejectsIdentityToken(t *testing.T) {
	tokens := newTestTokenService()

	token, err := tokens.IssueIdentity("user-id")
	require.NoError(t, err)

	_, err = tokens.VerifyContentAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyIdentity_Expired(t *testing.T) {
	tokens := NewTokenService(testJWTSecret, -time.Minute, -time.Minute)

	token, err := tokens.IssueIdentity("user-id")
	require.NoError(t, err)

	_, err = tokens.VerifyIdentity(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyContentAccess_Expired(t *testing.T) {
	tokens := NewTokenService(testJWTSecret, time.Hour, -time.Minute)

	token, err := tokens.IssueContentAccess("user-id", nil, 1)
	require.NoError(t, err)

	_, err = tokens.VerifyContentAccess(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyIdentity_WrongSecret(t *testing.T) {
	tokens := newTestTokenService()
	other := NewTokenService("another-secret-also-32-chars-long!!", time.Hour, time.Hour)

	token, err := tokens.IssueIdentity("user-id")
	require.NoError(t, err)

	_, err = other.VerifyIdentity(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyIdentity_Garbage(t *testing.T) {
	tokens := newTestTokenService()

	_, err := tokens.VerifyIdentity("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.VerifyIdentity("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
