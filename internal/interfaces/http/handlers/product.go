// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/product"
	"github.com/your-org/ecommerce-storefront/internal/domain/variant"
)

// ProductService is the product behaviour the handler needs
type ProductService interface {
	GetProduct(ctx context.Context, id string) (*product.ProductResponse, error)
	PreviewVariants(req product.PreviewVariantsRequest) ([]variant.Variant, error)
	SaveVariants(ctx context.Context, productID string, req product.SaveVariantsRequest) ([]product.ProductVariant, error)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService ProductService
	logger         *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	prod, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to retrieve product")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	respond(c, http.StatusOK, prod)
}

// PreviewVariants handles POST /admin/products/variants/preview
func (h *ProductHandler) PreviewVariants(c *gin.Context) {
	var req product.PreviewVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	variants, err := h.productService.PreviewVariants(req)
	if err != nil {
		h.variantFail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"variants": variants})
}

// SaveVariants handles POST and PUT /admin/products/:id/variants
func (h *ProductHandler) SaveVariants(c *gin.Context) {
	var req product.SaveVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	rows, err := h.productService.SaveVariants(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.variantFail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"variants": rows})
}

func (h *ProductHandler) variantFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, variant.ErrInvalidOption):
		respondError(c, http.StatusBadRequest, "Please fill in all option names and values")
	case errors.Is(err, product.ErrNoVariants):
		respondError(c, http.StatusBadRequest, "Add at least one option to generate variants")
	case errors.Is(err, product.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	default:
		h.logger.WithError(err).Error("Failed to save variants")
		respondError(c, http.StatusInternalServerError, "Failed to save variants")
	}
}
