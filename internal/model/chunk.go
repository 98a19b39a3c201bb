package model

import (
	"fmt"
	"strings"
)

// Category selects which knowledge collection a chunk belongs to
type Category string

const (
	CategoryBrand   Category = "brand"   // Voice, tone and style guidance
	CategoryProduct Category = "product" // Facts, features and customer results
)

// Categories returns all known categories in a stable order
func Categories() []Category {
	return []Category{CategoryBrand, CategoryProduct}
}

// ParseCategory converts user input into a Category
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryBrand:
		return CategoryBrand, nil
	case CategoryProduct:
		return CategoryProduct, nil
	default:
		return "", fmt.Errorf("invalid category %q (use brand or product)", s)
	}
}

// Chunk is an embedded unit of source-of-truth text used for grounding.
// Chunks are immutable once ingested.
type Chunk struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"` // File path or URL the chunk came from
	Category  Category  `json:"category" yaml:"category"`
	Embedding []float32 `json:"-" yaml:"-"`
}
