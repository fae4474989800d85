// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/product"
)

var (
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrDuplicateLine   = errors.New("cart line already exists")
)

// lineWriteAttempts bounds retries of a line write that lost an insert race
const lineWriteAttempts = 3

// StockError is returned when a quantity exceeds what the product has
type StockError struct {
	ProductID string
	Available int
}

func (e *StockError) Error() string {
	if e.Available <= 0 {
		return "Product is out of stock"
	}
	return fmt.Sprintf("Only %d left in stock", e.Available)
}

// Catalog resolves the products referenced by cart lines
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]product.Product, error)
}

// Service handles cart business logic
type Service struct {
	repo    Repository
	catalog Catalog
	logger  *logrus.Logger
}

// NewService creates a new cart service
func NewService(repo Repository, catalog Catalog, logger *logrus.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
}

// MergeItem is one guest line submitted at login
type MergeItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// MergeRequest carries the guest cart to fold into the user's cart
type MergeRequest struct {
	Items []MergeItem `json:"items"`
}

// GetCart returns the user's cart joined with current product data
func (s *Service) GetCart(ctx context.Context, userID uint) (*CartResponse, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return newCartResponse(nil), nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]LineResponse, 0, len(items))
	for _, item := range items {
		prod, ok := products[item.ProductID]
		if !ok {
			s.logger.WithFields(logrus.Fields{
				"user_id":    userID,
				"product_id": item.ProductID,
			}).Warn("Cart line references unavailable product")
			continue
		}
		lines = append(lines, LineResponse{
			ProductID: item.ProductID,
			Title:     prod.Title,
			Image:     prod.PrimaryImage(),
			Price:     item.Price,
			Quantity:  item.Quantity,
			Stock:     prod.Stock,
		})
	}

	return newCartResponse(lines), nil
}

// AddItem adds quantity units, merging with an existing line.
// A zero quantity adds one unit.
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddItemRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	prod, err := s.lookup(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	err = s.writeLines(ctx, func(repo Repository) error {
		item, err := repo.LockItem(ctx, userID, prod.ID)
		if errors.Is(err, ErrItemNotFound) {
			item = &CartItem{UserID: userID, ProductID: prod.ID}
		} else if err != nil {
			return err
		}

		total := item.Quantity + quantity
		if total > prod.Stock {
			return &StockError{ProductID: prod.ID, Available: prod.Stock}
		}

		item.Quantity = total
		item.Price = prod.EffectivePrice() // Update price in case it changed
		return repo.SaveItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateItem sets a line's quantity; zero removes the line
func (s *Service) UpdateItem(ctx context.Context, userID uint, req *UpdateItemRequest) (*CartResponse, error) {
	if req.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Quantity == 0 {
		return s.RemoveItem(ctx, userID, req.ProductID)
	}

	item, err := s.repo.FindItem(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	prod, err := s.lookup(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > prod.Stock {
		return nil, &StockError{ProductID: prod.ID, Available: prod.Stock}
	}

	item.Quantity = req.Quantity
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem drops the line for productID; removing an absent line is a no-op
func (s *Service) RemoveItem(ctx context.Context, userID uint, productID string) (*CartResponse, error) {
	if err := s.repo.DeleteItem(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, userID uint) (*CartResponse, error) {
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return nil, err
	}
	return newCartResponse(nil), nil
}

// MergeItems folds guest lines into the user's cart. Quantities are summed
// and capped at current stock; unknown or sold-out products are skipped.
func (s *Service) MergeItems(ctx context.Context, userID uint, req *MergeRequest) (*CartResponse, error) {
	wanted := make(map[string]int)
	var order []string
	for _, item := range req.Items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" || item.Quantity < 1 {
			continue
		}
		if _, ok := wanted[id]; !ok {
			order = append(order, id)
		}
		wanted[id] += item.Quantity
	}

	if len(order) > 0 {
		products, err := s.catalog.FindByIDs(ctx, order)
		if err != nil {
			return nil, err
		}

		err = s.writeLines(ctx, func(repo Repository) error {
			for _, id := range order {
				prod, ok := products[id]
				if !ok || !prod.IsInStock() {
					s.logger.WithField("product_id", id).Info("Skipping unavailable product during cart merge")
					continue
				}

				item, err := repo.LockItem(ctx, userID, id)
				if errors.Is(err, ErrItemNotFound) {
					item = &CartItem{UserID: userID, ProductID: id}
				} else if err != nil {
					return err
				}

				total := item.Quantity + wanted[id]
				if total > prod.Stock {
					total = prod.Stock
				}
				if total < 1 || total == item.Quantity {
					continue
				}

				item.Quantity = total
				item.Price = prod.EffectivePrice()
				if err := repo.SaveItem(ctx, item); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"lines":   len(order),
		}).Info("Guest cart merged")
	}

	return s.GetCart(ctx, userID)
}

// Count returns the total quantity across the user's lines
func (s *Service) Count(ctx context.Context, userID uint) (int, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count, nil
}

// writeLines runs fn in a transaction, retrying when a concurrent request
// inserted the same line first. The retry sees and locks that line.
func (s *Service) writeLines(ctx context.Context, fn func(repo Repository) error) error {
	var err error
	for attempt := 1; attempt <= lineWriteAttempts; attempt++ {
		err = s.repo.Transaction(ctx, fn)
		if !errors.Is(err, ErrDuplicateLine) {
			return err
		}
		s.logger.WithField("attempt", attempt).Debug("Cart line insert raced, retrying")
	}
	return err
}

func (s *Service) lookup(ctx context.Context, productID string) (*product.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, product.ErrProductNotFound
	}
	products, err := s.catalog.FindByIDs(ctx, []string{productID})
	if err != nil {
		return nil, err
	}
	prod, ok := products[productID]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &prod, nil
}
