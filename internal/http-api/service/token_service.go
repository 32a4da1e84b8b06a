package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ContentAccessClaims is the payload of a short-lived content token, scoped
// to a single figure+volume. The session registry, not this token, is
// authoritative for live access.
type ContentAccessClaims struct {
	UserID   string
	FigureID *string
	VolumeNo int
}

// TokenService issues and verifies the two token kinds: long-lived identity
// tokens (cookie) and short-lived content-access tokens. Tokens are signed
// HS256 JWTs, self-contained, with expiry enforced on verify.
type TokenService interface {
	IssueIdentity(userID string) (string, error)
	IssueContentAccess(userID string, figureID *string, volumeNo int) (string, error)
	VerifyIdentity(tokenString string) (userID string, err error)
	VerifyContentAccess(tokenString string) (*ContentAccessClaims, error)
}

type tokenService struct {
	secret      []byte
	identityTTL time.Duration
	contentTTL  time.Duration
}

func NewTokenService(secret string, identityTTL, contentTTL time.Duration) TokenService {
	return &tokenService{
		secret:      []byte(secret),
		identityTTL: identityTTL, // 7 days
		contentTTL:  contentTTL,  // 15 minutes
	}
}

func (s *tokenService) IssueIdentity(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.identityTTL).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "identity",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) IssueContentAccess(userID string, figureID *string, volumeNo int) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   userID,
		"volume_no": volumeNo,
		"exp":       time.Now().Add(s.contentTTL).Unix(),
		"iat":       time.Now().Unix(),
		"type":      "content",
	}
	if figureID != nil {
		claims["figure_id"] = *figureID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) VerifyIdentity(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, "identity")
	if err != nil {
		return "", err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *tokenService) VerifyContentAccess(tokenString string) (*ContentAccessClaims, error) {
	claims, err := s.parse(tokenString, "content")
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}
	volumeNo, ok := claims["volume_no"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	payload := &ContentAccessClaims{
		UserID:   userID,
		VolumeNo: int(volumeNo),
	}
	if figureID, ok := claims["figure_id"].(string); ok {
		payload.FigureID = &figureID
	}
	return payload, nil
}

func (s *tokenService) parse(tokenString, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	// A content token must never pass where an identity token is expected,
	// and vice versa.
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
