// internal/storefront/model/model.go

// Package model holds the storefront's cart, product and user shapes as they
// travel between the client, local storage and the backend.
package model

// Line is one product in a cart. Title, Image, Price and Stock are snapshots
// taken when the line was added; Stock is only used for client-side bounds.
type Line struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
}

// HasStockBound reports whether the line carries a usable stock snapshot
func (l Line) HasStockBound() bool {
	return l.Stock > 0
}

// Cart is an ordered list of lines plus totals derived from them
type Cart struct {
	Items      []Line `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPrice int64  `json:"totalPrice"`
}

// NewCart builds a cart over items with freshly computed totals.
// The items slice is copied.
func NewCart(items []Line) Cart {
	lines := make([]Line, len(items))
	copy(lines, items)

	cart := Cart{Items: lines}
	for _, line := range lines {
		cart.TotalItems += line.Quantity
		cart.TotalPrice += line.Price * int64(line.Quantity)
	}
	return cart
}

// EmptyCart returns a cart with no lines
func EmptyCart() Cart {
	return NewCart(nil)
}

// Find returns the index of the line for productID, or -1
func (c Cart) Find(productID string) int {
	for i, line := range c.Items {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; totals are recomputed from the lines
func (c Cart) Clone() Cart {
	return NewCart(c.Items)
}

// ProductDetails is what a caller may hand over to materialize a new line
type ProductDetails struct {
	Title string
	Price int64
	Image string
	Stock int
}

// Image is a product image reference
type Image struct {
	URL string `json:"url"`
}

// Product is the product-lookup response
type Product struct {
	ID         string  `json:"_id"`
	Title      string  `json:"title"`
	SKU        string  `json:"sku,omitempty"`
	Price      int64   `json:"price"`
	FinalPrice int64   `json:"finalPrice"`
	Images     []Image `json:"images"`
	Stock      int     `json:"stock"`
}

// Details converts a looked-up product into line details; a positive final
// price wins over the list price.
func (p Product) Details() ProductDetails {
	details := ProductDetails{
		Title: p.Title,
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.FinalPrice > 0 {
		details.Price = p.FinalPrice
	}
	if len(p.Images) > 0 {
		details.Image = p.Images[0].URL
	}
	return details
}

// Address is a saved user address
type Address struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"pincode"`
	Phone      string `json:"phone,omitempty"`
	IsDefault  bool   `json:"isDefault"`
}

// User is the current-user profile
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Addresses []Address `json:"addresses"`
}
