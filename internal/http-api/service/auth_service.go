package service

import (
	"context"
	"errors"

	"figurehub/internal/http-api/middleware/auth"
	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/repository"
)

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService registers users and exchanges credentials for identity
// tokens. The token lands in an HTTP-only cookie; every core endpoint
// consumes it through the auth middleware.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenService
}

func NewAuthService(users repository.UserRepository, tokens TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	// Check first for friendlier errors; the unique indexes are the
	// actual guarantee under concurrency.
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Dummy compare so a missing user takes as long as a bad password
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueIdentity(user.ID)
	if err != nil {
		return "", nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// Not worth failing the login over
		return token, user, nil
	}
	return token, user, nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}
