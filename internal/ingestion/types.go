// Package ingestion defines the product change events carried on the
// product-events topic and consumed by every index replica.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
)

type EventType string

const (
	EventUpsert EventType = "upsert"
	EventDelete EventType = "delete"
)

// ProductEvent is the Kafka payload for one catalog change. Upserts carry
// the full Product; deletes carry only ProductID.
type ProductEvent struct {
	Type      EventType        `json:"type"`
	Product   *catalog.Product `json:"product,omitempty"`
	ProductID uint32           `json:"product_id,omitempty"`
	EmittedAt time.Time        `json:"emitted_at"`
}

// TargetID is the id the event applies to.
func (e ProductEvent) TargetID() uint32 {
	if e.Type == EventUpsert && e.Product != nil {
		return e.Product.ID
	}
	return e.ProductID
}
