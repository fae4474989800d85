// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/variant"
)

// ErrNoVariants is returned when a save request carries neither options nor rows
var ErrNoVariants = errors.New("no variants to save")

// Service handles product business logic
type Service struct {
	repo   Repository
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ProductImageResponse is one image as the storefront reads it
type ProductImageResponse struct {
	URL string `json:"url"`
}

// ProductResponse is the public product shape
type ProductResponse struct {
	ID         string                 `json:"_id"`
	Title      string                 `json:"title"`
	SKU        string                 `json:"sku"`
	Price      int64                  `json:"price"`
	FinalPrice int64                  `json:"finalPrice"`
	Images     []ProductImageResponse `json:"images"`
	Stock      int                    `json:"stock"`
	Variants   []ProductVariant       `json:"variants,omitempty"`
}

// PreviewVariantsRequest asks for the variant table of an unsaved product
type PreviewVariantsRequest struct {
	Product variant.ProductInfo `json:"product"`
	Options []variant.OptionRow `json:"options"`
}

// SaveVariantsRequest persists a product's variants. When Variants is empty
// the table is generated from Options with the product's defaults.
type SaveVariantsRequest struct {
	Options  []variant.OptionRow `json:"options"`
	Variants []variant.Variant   `json:"variants"`
}

// GetProduct retrieves an active product by id
func (s *Service) GetProduct(ctx context.Context, id string) (*ProductResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProductNotFound
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toResponse(product), nil
}

// PreviewVariants runs the generator without persisting anything
func (s *Service) PreviewVariants(req PreviewVariantsRequest) ([]variant.Variant, error) {
	return variant.Generate(req.Options, req.Product)
}

// SaveVariants replaces the product's variant rows
func (s *Service) SaveVariants(ctx context.Context, productID string, req SaveVariantsRequest) ([]ProductVariant, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	generated := req.Variants
	if len(generated) == 0 {
		if len(req.Options) == 0 {
			return nil, ErrNoVariants
		}
		generated, err = variant.Generate(req.Options, product.VariantInfo())
		if err != nil {
			return nil, err
		}
	}

	rows := make([]ProductVariant, 0, len(generated))
	for _, v := range generated {
		rows = append(rows, toVariantRow(product, v))
	}

	if err := s.repo.ReplaceVariants(ctx, product.ID, rows); err != nil {
		return nil, fmt.Errorf("failed to save variants: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"variants":   len(rows),
	}).Info("Product variants saved")

	return rows, nil
}

func toVariantRow(product *Product, v variant.Variant) ProductVariant {
	row := ProductVariant{
		ProductID:  product.ID,
		SKU:        v.SKU,
		Name:       v.Name(),
		Attributes: append([]variant.Attribute(nil), v.Attributes...),
		Price:      product.Price,
		Images:     append([]string{}, v.Images...),
	}
	if v.Price != nil {
		row.Price = *v.Price
	}
	if v.Stock != nil {
		row.Stock = *v.Stock
	}
	if row.SKU == "" {
		row.SKU = variant.DeriveSKU(product.VariantInfo(), v.Attributes)
	}
	return row
}

func toResponse(p *Product) *ProductResponse {
	images := make([]ProductImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = ProductImageResponse{URL: img.URL}
	}
	return &ProductResponse{
		ID:         p.ID,
		Title:      p.Title,
		SKU:        p.SKU,
		Price:      p.Price,
		FinalPrice: p.FinalPrice,
		Images:     images,
		Stock:      p.Stock,
		Variants:   p.Variants,
	}
}
