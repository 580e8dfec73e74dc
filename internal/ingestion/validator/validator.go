// Package validator checks product events before they reach the index.
package validator

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/errors"
)

const maxFieldLength = 64 * 1024

// ValidationError holds per-field validation failure messages. It unwraps to
// ErrInvalidProduct.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "invalid product event: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidProduct
}

// ValidateEvent checks the event type and that its payload matches it.
func ValidateEvent(ev *ingestion.ProductEvent) error {
	switch ev.Type {
	case ingestion.EventUpsert:
		return validateUpsert(ev)
	case ingestion.EventDelete:
		if ev.Product != nil && ev.Product.ID != ev.ProductID {
			return &ValidationError{Fields: map[string]string{
				"product_id": "delete carries a product with a different id",
			}}
		}
		return nil
	default:
		return apperrors.Newf(apperrors.ErrUnknownEventType, "%q", ev.Type)
	}
}

func validateUpsert(ev *ingestion.ProductEvent) error {
	if ev.Product == nil {
		return &ValidationError{Fields: map[string]string{"product": "upsert requires a product"}}
	}
	errs := make(map[string]string)
	p := ev.Product
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	for field, v := range map[string]string{
		"name":        p.Name,
		"brand":       p.Brand,
		"category":    p.Category,
		"description": p.Description,
	} {
		if len(v) > maxFieldLength {
			errs[field] = fmt.Sprintf("must be at most %d bytes", maxFieldLength)
		}
	}
	if ev.ProductID != 0 && ev.ProductID != p.ID {
		errs["product_id"] = "does not match product.id"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
