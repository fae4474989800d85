// internal/domain/variant/generator.go
package variant

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidOption is returned when an option row has an empty name or values string
var ErrInvalidOption = errors.New("every option needs a name and at least one value")

// Generate expands option rows into the full variant table for a product.
// Rows are validated first; no variants are produced when validation fails.
func Generate(rows []OptionRow, product ProductInfo) ([]Variant, error) {
	if err := Validate(rows); err != nil {
		return nil, err
	}

	options := Normalize(rows)
	if len(options) == 0 {
		return []Variant{}, nil
	}

	combinations := Combine(options)
	if split, ok := splitSelfMatching(options, combinations); ok {
		combinations = split
	}

	variants := make([]Variant, len(combinations))
	for i, attrs := range combinations {
		variants[i] = Variant{
			Attributes: attrs,
			Price:      copyPrice(product.Price),
			SKU:        DeriveSKU(product, attrs),
			Images:     []string{},
		}
	}

	return variants, nil
}

// Validate checks every row has a non-blank name and values string
func Validate(rows []OptionRow) error {
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" || strings.TrimSpace(row.Values) == "" {
			return fmt.Errorf("option %d: %w", i+1, ErrInvalidOption)
		}
	}
	return nil
}

// Normalize merges rows sharing a name case-insensitively (first-seen casing wins)
// and parses each group's comma-separated values in first-occurrence order.
func Normalize(rows []OptionRow) []Option {
	var options []Option
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		key := strings.ToLower(name)

		pos, ok := index[key]
		if !ok {
			pos = len(options)
			index[key] = pos
			seen[key] = make(map[string]bool)
			options = append(options, Option{Name: name, Values: []string{}})
		}

		for _, raw := range strings.Split(row.Values, ",") {
			value := strings.TrimSpace(raw)
			if value == "" || seen[key][value] {
				continue
			}
			seen[key][value] = true
			options[pos].Values = append(options[pos].Values, value)
		}
	}

	return options
}

// Combine returns the cartesian product of the option values, one attribute
// per option in option order.
func Combine(options []Option) [][]Attribute {
	combinations := [][]Attribute{{}}

	for _, option := range options {
		next := make([][]Attribute, 0, len(combinations)*len(option.Values))
		for _, combo := range combinations {
			for _, value := range option.Values {
				branch := make([]Attribute, len(combo), len(combo)+1)
				copy(branch, combo)
				branch = append(branch, Attribute{Key: option.Name, Value: value})
				next = append(next, branch)
			}
		}
		combinations = next
	}

	return combinations
}

// splitSelfMatching handles rows typed as {Name: "Red", Values: "Red"},
// {Name: "Blue", Values: "Blue"}: several options collapsing to a single
// combination whose every value equals its key. Each attribute then becomes
// its own variant. A single mismatched pair leaves the combination untouched.
func splitSelfMatching(options []Option, combinations [][]Attribute) ([][]Attribute, bool) {
	if len(options) <= 1 || len(combinations) != 1 {
		return nil, false
	}

	only := combinations[0]
	for _, attr := range only {
		if !strings.EqualFold(attr.Key, attr.Value) {
			return nil, false
		}
	}

	split := make([][]Attribute, len(only))
	for i, attr := range only {
		split[i] = []Attribute{attr}
	}
	return split, true
}

// DeriveSKU suggests a SKU: the product SKU (or the first three letters of the
// title) followed by the attribute values, uppercased and hyphen separated.
func DeriveSKU(product ProductInfo, attrs []Attribute) string {
	base := strings.TrimSpace(product.SKU)
	if base == "" {
		base = firstRunes(strings.TrimSpace(product.Title), 3)
	}

	values := make([]string, len(attrs))
	for i, attr := range attrs {
		values[i] = attr.Value
	}
	suffix := strings.Join(values, "-")

	sku := suffix
	if base != "" {
		sku = base + "-" + suffix
	}

	return sanitizeSKU(strings.ToUpper(sku))
}

func sanitizeSKU(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func copyPrice(price *int64) *int64 {
	if price == nil {
		return nil
	}
	p := *price
	return &p
}
