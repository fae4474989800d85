// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/user"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// UserService is the user behaviour the handler needs
type UserService interface {
	Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*user.ProfileResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService UserService
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.WithError(err).Error("Login failed")
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	respond(c, http.StatusOK, resp)
}

// Me handles GET /users/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// Token outlived the account
			respondError(c, http.StatusUnauthorized, "Your session has expired. Please log in again.")
			return
		}
		h.logger.WithError(err).Error("Failed to retrieve profile")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	respond(c, http.StatusOK, profile)
}
