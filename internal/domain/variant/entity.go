// internal/domain/variant/entity.go
package variant

import "strings"

// OptionRow is one option entry as typed into the admin product form,
// e.g. {Name: "Color", Values: "Red, Blue"}
type OptionRow struct {
	Name   string `json:"name" binding:"required"`
	Values string `json:"values" binding:"required"`
}

// Option is a normalized option: merged by name, values split and de-duplicated
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Attribute is one {key, value} pair of a variant combination
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductInfo carries the parent product fields used for defaults and SKU derivation
type ProductInfo struct {
	Title string `json:"title"`
	SKU   string `json:"sku"`
	Price *int64 `json:"price,omitempty"`
}

// Variant is one generated row of the admin variant table.
// Price and Stock are nil until set; SKU is a suggestion the admin may overwrite.
type Variant struct {
	Attributes []Attribute `json:"attributes"`
	Price      *int64      `json:"price"`
	Stock      *int        `json:"stock"`
	SKU        string      `json:"sku"`
	Images     []string    `json:"images"`
}

// AddImage attaches an image reference to this variant only
func (v *Variant) AddImage(url string) {
	v.Images = append(v.Images, url)
}

// Name joins the attribute values, e.g. "Red / L"
func (v *Variant) Name() string {
	values := make([]string, len(v.Attributes))
	for i, attr := range v.Attributes {
		values[i] = attr.Value
	}
	return strings.Join(values, " / ")
}
