package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowtrack/flowtrack-api/internal/constants"
	"github.com/flowtrack/flowtrack-api/internal/metrics"
	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/repository"
	"github.com/flowtrack/flowtrack-api/internal/security"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	users    repository.UserRepository
	tokens   *security.TokenIssuer
	tokenTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *security.TokenIssuer, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = constants.DefaultTokenTTL
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued bearer token.
type LoginResult struct {
	User        *models.User
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// Login verifies credentials and issues an access token.
// Unknown emails, wrong passwords and inactive users are indistinguishable.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			security.DummyVerify(input.Password)
			metrics.AuthLoginsTotal.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Every rejection costs one bcrypt compare.
	if !security.VerifyPassword(input.Password, user.HashedPassword) || !user.IsActive {
		metrics.AuthLoginsTotal.WithLabelValues(metrics.LoginInvalidCredentials).Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.String(), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.AuthLoginsTotal.WithLabelValues(metrics.LoginSuccess).Inc()
	return &LoginResult{
		User:        user,
		AccessToken: token,
		TokenType:   constants.TokenType,
		ExpiresIn:   s.tokenTTL,
	}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", ErrInvalidToken)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
