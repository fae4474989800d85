// internal/domain/product/repository.go
package product

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no active product has the given id
var ErrProductNotFound = errors.New("product not found")

// Repository loads products and stores their variants
type Repository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	ReplaceVariants(ctx context.Context, productID string, variants []ProductVariant) error
}

// GormRepository is the Postgres-backed Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new product repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) withImages(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})
}

// FindByID retrieves an active product with images and variants
func (r *GormRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	result := r.withImages(ctx).
		Preload("Variants").
		Where("id = ? AND is_active = ?", id, true).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// FindByIDs retrieves the active products among ids, keyed by id
func (r *GormRepository) FindByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	found := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var products []Product
	if err := r.withImages(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

// ReplaceVariants swaps the product's variant table in one transaction
func (r *GormRepository) ReplaceVariants(ctx context.Context, productID string, variants []ProductVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&ProductVariant{}).Error; err != nil {
			return fmt.Errorf("failed to delete old variants: %w", err)
		}
		if len(variants) == 0 {
			return nil
		}
		if err := tx.Create(&variants).Error; err != nil {
			return fmt.Errorf("failed to create variants: %w", err)
		}
		return nil
	})
}
