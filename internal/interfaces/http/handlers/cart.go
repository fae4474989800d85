// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/product"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// CartService is the cart behaviour the handler needs
type CartService interface {
	GetCart(ctx context.Context, userID uint) (*cart.CartResponse, error)
	AddItem(ctx context.Context, userID uint, req *cart.AddItemRequest) (*cart.CartResponse, error)
	UpdateItem(ctx context.Context, userID uint, req *cart.UpdateItemRequest) (*cart.CartResponse, error)
	RemoveItem(ctx context.Context, userID uint, productID string) (*cart.CartResponse, error)
	ClearCart(ctx context.Context, userID uint) (*cart.CartResponse, error)
	MergeItems(ctx context.Context, userID uint, req *cart.MergeRequest) (*cart.CartResponse, error)
	Count(ctx context.Context, userID uint) (int, error)
}

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService CartService
	logger      *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Failed to retrieve cart")
		return
	}

	respond(c, http.StatusOK, cartResponse)
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	count, err := h.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Failed to retrieve cart")
		return
	}

	respond(c, http.StatusOK, gin.H{"count": count})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	cartResponse, err := h.cartService.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err, "Failed to add item to cart")
		return
	}

	respond(c, http.StatusOK, cartResponse)
}

// UpdateCartItem handles PUT /cart/items
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	cartResponse, err := h.cartService.UpdateItem(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err, "Failed to update quantity")
		return
	}

	respond(c, http.StatusOK, cartResponse)
}

// RemoveFromCart handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	cartResponse, err := h.cartService.RemoveItem(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		h.fail(c, err, "Failed to remove item")
		return
	}

	respond(c, http.StatusOK, cartResponse)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	cartResponse, err := h.cartService.ClearCart(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Failed to clear cart")
		return
	}

	respond(c, http.StatusOK, cartResponse)
}

// MergeCart handles POST /cart/merge
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req cart.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	cartResponse, err := h.cartService.MergeItems(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err, "Failed to merge cart")
		return
	}

	respond(c, http.StatusOK, cartResponse)
}

// fail maps domain errors to status codes; anything unexpected is a 500
// with the fallback message.
func (h *CartHandler) fail(c *gin.Context, err error, fallback string) {
	var stockErr *cart.StockError
	switch {
	case errors.As(err, &stockErr):
		respondError(c, http.StatusConflict, stockErr.Error())
	case errors.Is(err, product.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "Item not found in cart")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, "Please choose a valid quantity")
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
