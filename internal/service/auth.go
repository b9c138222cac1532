// Package service provides business-logic services for authentication
// and habit tracking, delegating persistence to repository interfaces.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inhabitapp/inhabit/internal/models"
)

// tokenTTL is how long an issued bearer token stays valid.
const tokenTTL = 30 * 24 * time.Hour

var (
	// ErrInvalidCredentials is returned when the provided credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnauthorized is returned when a token does not resolve to a user.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// CreateUser stores a new user record.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail fetches a user by email, sql.ErrNoRows if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID fetches a user by id, sql.ErrNoRows if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// SaveToken stores a bearer token with an expiry.
	SaveToken(ctx context.Context, token, userID string, expiresAt time.Time) error
	// GetUserIDByToken resolves an unexpired token, sql.ErrNoRows otherwise.
	GetUserIDByToken(ctx context.Context, token string) (string, error)
	// DeleteToken revokes a token.
	DeleteToken(ctx context.Context, token string) error
}

// AuthService implements registration, login, and token resolution.
type AuthService struct {
	repo AuthRepository
	now  func() time.Time
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo, now: time.Now}
}

// Register creates a new user account and issues a bearer token.
// Returns ErrEmailTaken when the email is already registered and
// ErrInvalidCredentials for an empty email or password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the given bearer token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteToken(ctx, token)
}

// UserByToken resolves a bearer token to its user.
// Returns ErrUnauthorized for unknown or expired tokens.
func (s *AuthService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.repo.GetUserIDByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.repo.SaveToken(ctx, token, userID, s.now().Add(tokenTTL)); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return token, nil
}
