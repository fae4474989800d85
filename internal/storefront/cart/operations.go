// internal/storefront/cart/operations.go
package cart

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/storefront/api"
	"github.com/your-org/ecommerce-storefront/internal/storefront/model"
	"github.com/your-org/ecommerce-storefront/internal/storefront/notify"
)

// AddToCart adds quantity units of a product. A quantity of zero adds one.
// Guests need product details for a new line; when details is nil they are
// looked up by id.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int, details *model.ProductDetails) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return s.fail(ErrInvalidQuantity, "Please choose a valid quantity")
	}

	if s.authToken() != "" {
		err := s.remote(ctx, "add to cart", "Failed to add item to cart", func(token string) (*model.Cart, error) {
			return s.backend.AddItem(ctx, token, api.AddItemRequest{ProductID: productID, Quantity: quantity})
		})
		if err != nil {
			return err
		}
		s.notifier.Notify(notify.Success, "Added to cart")
		return nil
	}

	for {
		needDetails, err := s.guestAdd(ctx, productID, quantity, details)
		if err != nil {
			return err
		}
		if !needDetails {
			s.notifier.Notify(notify.Success, "Added to cart")
			return nil
		}

		resolved, err := s.lookupProduct(ctx, productID)
		if err != nil {
			s.logger.WithError(err).WithField("product_id", productID).Warn("Product lookup failed")
			return s.fail(fmt.Errorf("%s: %w", productID, ErrProductUnavailable), "This product is currently unavailable")
		}
		details = resolved
	}
}

// guestAdd applies an add to the guest cart. It reports needDetails when the
// line is new and no details were supplied.
func (s *Store) guestAdd(ctx context.Context, productID string, quantity int, details *model.ProductDetails) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append([]model.Line(nil), s.cart.Items...)

	if idx := s.cart.Find(productID); idx >= 0 {
		line := items[idx]
		if line.HasStockBound() && line.Quantity+quantity > line.Stock {
			return false, s.fail(
				&StockError{ProductID: productID, Requested: line.Quantity + quantity, Available: line.Stock},
				fmt.Sprintf("Only %d units available", line.Stock),
			)
		}
		items[idx].Quantity += quantity
	} else {
		if details == nil {
			return true, nil
		}
		if details.Stock > 0 && quantity > details.Stock {
			return false, s.fail(
				&StockError{ProductID: productID, Requested: quantity, Available: details.Stock},
				fmt.Sprintf("Only %d units available", details.Stock),
			)
		}
		items = append(items, model.Line{
			ProductID: productID,
			Title:     details.Title,
			Image:     details.Image,
			Price:     details.Price,
			Quantity:  quantity,
			Stock:     details.Stock,
		})
	}

	s.commitGuestLocked(ctx, items)
	return false, nil
}

func (s *Store) lookupProduct(ctx context.Context, productID string) (*model.ProductDetails, error) {
	s.begin()
	defer s.end()

	product, err := s.backend.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.ID == "" {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	details := product.Details()
	return &details, nil
}

// UpdateQuantity sets the quantity of an existing line. Increases emit an
// info notice; decreases are silent.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.fail(ErrInvalidQuantity, "Please choose a valid quantity")
	}

	s.mu.Lock()
	previous := 0
	if idx := s.cart.Find(productID); idx >= 0 {
		previous = s.cart.Items[idx].Quantity
	}
	authenticated := s.token != ""
	s.mu.Unlock()

	if authenticated {
		err := s.remote(ctx, "update quantity", "Failed to update quantity", func(token string) (*model.Cart, error) {
			return s.backend.UpdateItem(ctx, token, api.UpdateItemRequest{ProductID: productID, Quantity: quantity})
		})
		if err != nil {
			return err
		}
	} else if err := s.guestUpdate(ctx, productID, quantity); err != nil {
		return err
	}

	if quantity > previous {
		s.notifier.Notify(notify.Info, "Quantity updated")
	}
	return nil
}

func (s *Store) guestUpdate(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.Find(productID)
	if idx < 0 {
		return s.fail(fmt.Errorf("%s: %w", productID, ErrItemNotFound), "Item not found in cart")
	}

	items := append([]model.Line(nil), s.cart.Items...)
	if items[idx].HasStockBound() && quantity > items[idx].Stock {
		return s.fail(
			&StockError{ProductID: productID, Requested: quantity, Available: items[idx].Stock},
			fmt.Sprintf("Only %d units available", items[idx].Stock),
		)
	}
	items[idx].Quantity = quantity

	s.commitGuestLocked(ctx, items)
	return nil
}

// RemoveFromCart drops the line for productID
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	if s.authToken() != "" {
		err := s.remote(ctx, "remove from cart", "Failed to remove item", func(token string) (*model.Cart, error) {
			return s.backend.RemoveItem(ctx, token, api.RemoveItemRequest{ProductID: productID})
		})
		if err != nil {
			return err
		}
	} else {
		s.mu.Lock()
		items := make([]model.Line, 0, len(s.cart.Items))
		for _, line := range s.cart.Items {
			if line.ProductID != productID {
				items = append(items, line)
			}
		}
		s.commitGuestLocked(ctx, items)
		s.mu.Unlock()
	}

	s.notifier.Notify(notify.Success, "Removed from cart")
	return nil
}

// ClearCart empties the cart; for guests the persisted entry is deleted
func (s *Store) ClearCart(ctx context.Context) error {
	if s.authToken() != "" {
		err := s.remote(ctx, "clear cart", "Failed to clear cart", func(token string) (*model.Cart, error) {
			return s.backend.ClearCart(ctx, token)
		})
		if err != nil {
			return err
		}
	} else {
		s.mu.Lock()
		s.cart = model.EmptyCart()
		s.mu.Unlock()
		s.removeKey(ctx, s.cartKey)
	}

	s.notifier.Notify(notify.Success, "Cart cleared")
	return nil
}

// MergeLocalCart submits the persisted guest cart to the account behind
// token, once. The guest entry is deleted whether or not it existed or the
// merge succeeded; a failed merge is only logged.
func (s *Store) MergeLocalCart(ctx context.Context, token string) {
	defer s.removeKey(ctx, s.cartKey)

	guest := s.loadGuestCart(ctx)
	if len(guest.Items) == 0 {
		return
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	s.begin()
	defer s.end()

	merged, err := s.backend.MergeCart(ctx, token, api.MergeCartRequest{Items: guest.Items})
	if err != nil {
		s.logger.WithError(err).WithField("items", len(guest.Items)).Warn("Failed to merge guest cart")
		return
	}

	s.mu.Lock()
	s.applyLocked(seq, *merged)
	s.mu.Unlock()

	s.notifier.Notify(notify.Success, "Your cart items have been saved to your account")
}

// commitGuestLocked replaces the cart and persists it; callers hold mu
func (s *Store) commitGuestLocked(ctx context.Context, items []model.Line) {
	s.cart = model.NewCart(items)

	raw, err := json.Marshal(s.cart)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode guest cart")
		return
	}
	if err := s.storage.Set(ctx, s.cartKey, string(raw)); err != nil {
		s.logger.WithError(err).Warn("Failed to persist guest cart")
	}
}

// loadGuestCart reads the persisted guest cart. Unreadable entries are
// discarded and an empty cart is returned.
func (s *Store) loadGuestCart(ctx context.Context) model.Cart {
	raw, ok, err := s.storage.Get(ctx, s.cartKey)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read guest cart")
		return model.EmptyCart()
	}
	if !ok || raw == "" {
		return model.EmptyCart()
	}

	cart, err := decodeCart(raw)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"key":   s.cartKey,
			"error": err.Error(),
		}).Warn("Discarding corrupt guest cart")
		s.removeKey(ctx, s.cartKey)
		return model.EmptyCart()
	}
	return cart
}
