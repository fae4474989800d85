// internal/domain/cart/repository.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists cart lines per user
type Repository interface {
	ListItems(ctx context.Context, userID uint) ([]CartItem, error)
	FindItem(ctx context.Context, userID uint, productID string) (*CartItem, error)
	LockItem(ctx context.Context, userID uint, productID string) (*CartItem, error)
	SaveItem(ctx context.Context, item *CartItem) error
	DeleteItem(ctx context.Context, userID uint, productID string) error
	DeleteAll(ctx context.Context, userID uint) error
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

// GormRepository is the Postgres-backed Repository
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new cart repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ListItems returns the user's lines in insertion order
func (r *GormRepository) ListItems(ctx context.Context, userID uint) ([]CartItem, error) {
	var items []CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return items, nil
}

// FindItem returns the line for productID or ErrItemNotFound
func (r *GormRepository) FindItem(ctx context.Context, userID uint, productID string) (*CartItem, error) {
	var item CartItem
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// LockItem is FindItem with the row held FOR UPDATE until the transaction ends
func (r *GormRepository) LockItem(ctx context.Context, userID uint, productID string) (*CartItem, error) {
	var item CartItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to lock cart item: %w", err)
	}
	return &item, nil
}

// SaveItem creates or updates a line. Inserting a second line for the same
// product returns ErrDuplicateLine.
func (r *GormRepository) SaveItem(ctx context.Context, item *CartItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateLine
		}
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

// DeleteItem removes the line for productID, if any
func (r *GormRepository) DeleteItem(ctx context.Context, userID uint, productID string) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// DeleteAll empties the user's cart
func (r *GormRepository) DeleteAll(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Transaction runs fn against a repository bound to one database transaction
func (r *GormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}
