// Package catalog defines the product record indexed by the search engine
// and the sources a catalog can be bulk-loaded from.
package catalog

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/errors"
)

// Product is the indexed record. Name is required; an empty Brand, Category
// or Description means the field is absent. Two products with the same ID
// replace one another.
type Product struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

func New(id uint32, name, brand, category, description string) Product {
	return Product{
		ID:          id,
		Name:        name,
		Brand:       brand,
		Category:    category,
		Description: description,
	}
}

// IndexedFields returns the text fields in indexing order: name, brand,
// category, description. Absent fields are skipped.
func (p Product) IndexedFields() []string {
	fields := make([]string, 0, 4)
	for _, f := range []string{p.Name, p.Brand, p.Category, p.Description} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Validate checks that the product carries its primary field.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.Newf(apperrors.ErrInvalidProduct, "product %d has no name", p.ID)
	}
	return nil
}
