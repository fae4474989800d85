// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem is one line of an authenticated user's cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"-"`
	ProductID string    `gorm:"not null;size:36;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // Price at time of adding
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_lines"
}

// LineResponse is a cart line joined with the product it refers to
type LineResponse struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
}

// CartResponse is the cart as the storefront reads it
type CartResponse struct {
	Items      []LineResponse `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPrice int64          `json:"totalPrice"`
}

// newCartResponse folds the totals from the lines
func newCartResponse(items []LineResponse) *CartResponse {
	cart := &CartResponse{Items: items}
	if cart.Items == nil {
		cart.Items = []LineResponse{}
	}
	for _, item := range cart.Items {
		cart.TotalItems += item.Quantity
		cart.TotalPrice += item.Price * int64(item.Quantity)
	}
	return cart
}
