package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"grand_hotel/internal/auth"
	"grand_hotel/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AccountService struct {
	users  domain.UserRepository
	secret string
	ttl    time.Duration
}

func NewAccountService(u domain.UserRepository, secret string, ttl time.Duration) *AccountService {
	return &AccountService{users: u, secret: secret, ttl: ttl}
}

func (s *AccountService) Signup(ctx context.Context, email, name, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleGuest,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login verifies credentials and mints an access token. The same error comes
// back for a missing user and a bad password.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	tok, err := auth.MintToken(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return "", domain.User{}, err
	}
	return tok, u, nil
}

// Authenticate resolves a bearer token to its claims.
func (s *AccountService) Authenticate(token string) (auth.Claims, error) {
	return auth.ParseToken(s.secret, token)
}
