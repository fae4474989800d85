// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
)

// ErrInvalidCredentials is returned for an unknown email or wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service handles user business logic
type Service struct {
	repo            Repository
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	logger          *logrus.Logger
}

// NewService creates a new user service
func NewService(repo Repository, passwords *auth.PasswordManager, tokens *auth.JWTManager, logger *logrus.Logger) *Service {
	return &Service{
		repo:            repo,
		passwordManager: passwords,
		jwtManager:      tokens,
		logger:          logger,
	}
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      *ProfileResponse `json:"user"`
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expiresIn"`
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	// Find user by email
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Verify password
	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	// Update last login
	if err := s.repo.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record login time")
	}

	profile, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:      profile,
		Token:     token,
		ExpiresIn: int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// GetProfile retrieves the user's public profile with addresses
func (s *Service) GetProfile(ctx context.Context, userID uint) (*ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}
