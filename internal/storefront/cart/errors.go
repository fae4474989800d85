// internal/storefront/cart/errors.go
package cart

import (
	"errors"
	"fmt"

	"github.com/your-org/ecommerce-storefront/internal/storefront/api"
)

var (
	// ErrInsufficientStock means the requested quantity exceeds the known stock
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductUnavailable means a guest line could not be materialized
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrUnauthorized means the backend rejected the token; the store has logged out
	ErrUnauthorized = api.ErrUnauthorized
	// ErrRemoteOperationFailed wraps every other failed backend call
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	// ErrInvalidQuantity rejects quantities below one
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrItemNotFound means the product has no line in the cart
	ErrItemNotFound = errors.New("item not found in cart")
)

// StockError reports how many units are actually available
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d available for %s, requested %d", e.Available, e.ProductID, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// RemoteError carries the message shown to the user for a failed backend call
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemoteOperationFailed, e.Err}
}
