// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/your-org/ecommerce-storefront/internal/domain/variant"
	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID         string         `gorm:"primaryKey;size:36" json:"_id"`
	SKU        string         `gorm:"index;size:100" json:"sku"`
	Title      string         `gorm:"not null;size:255" json:"title"`
	Slug       string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Price      int64          `gorm:"not null" json:"price"`      // Price in paise
	FinalPrice int64          `gorm:"default:0" json:"finalPrice"` // Discounted price, 0 when none
	Stock      int            `gorm:"default:0" json:"stock"`
	IsActive   bool           `gorm:"default:true" json:"isActive"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// ProductImage represents product images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProductID string    `gorm:"not null;index;size:36" json:"-"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	SortOrder int       `gorm:"default:0" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// ProductVariant is one persisted row of the variant table
type ProductVariant struct {
	ID         string              `gorm:"primaryKey;size:36" json:"_id"`
	ProductID  string              `gorm:"not null;index;size:36" json:"productId"`
	SKU        string              `gorm:"index;size:100" json:"sku"`
	Name       string              `gorm:"size:255" json:"name"`
	Attributes []variant.Attribute `gorm:"serializer:json;type:jsonb" json:"attributes"`
	Price      int64               `gorm:"not null" json:"price"`
	Stock      int                 `gorm:"default:0" json:"stock"`
	Images     []string            `gorm:"serializer:json;type:jsonb" json:"images"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (ProductImage) TableName() string   { return "product_images" }
func (ProductVariant) TableName() string { return "product_variants" }

// BeforeCreate assigns a UUID when none is set
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// BeforeCreate assigns a UUID when none is set
func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// Business methods for Product

// EffectivePrice is the price a cart line is charged
func (p *Product) EffectivePrice() int64 {
	if p.FinalPrice > 0 {
		return p.FinalPrice
	}
	return p.Price
}

// PrimaryImage returns the first image URL or ""
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// IsInStock reports whether at least one unit can be sold
func (p *Product) IsInStock() bool {
	return p.IsActive && p.Stock > 0
}

// VariantInfo returns the fields the variant generator derives defaults from
func (p *Product) VariantInfo() variant.ProductInfo {
	price := p.Price
	return variant.ProductInfo{
		Title: p.Title,
		SKU:   p.SKU,
		Price: &price,
	}
}
