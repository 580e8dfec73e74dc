// Package consumer applies product events from Kafka to the in-memory
// index.
package consumer

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
)

// Mutator is the write side of index.MemoryIndex.
type Mutator interface {
	Add(p catalog.Product)
	Remove(id uint32) bool
}

// IndexConsumer drives a Kafka consumer whose handler mutates the index.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a kafka.MessageHandler that applies each event to
// idx. Events that cannot be decoded or fail validation are logged and
// acknowledged: redelivering them would never succeed.
func HandleMessage(idx Mutator, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.ProductEvent](value)
		if err != nil {
			logger.Error("failed to decode product event", "error", err, "key", string(key))
			m.IngestEvent("unknown", "undecodable")
			return nil
		}
		if err := validator.ValidateEvent(&event); err != nil {
			logger.Warn("skipping invalid product event",
				"error", err,
				"type", event.Type,
				"key", string(key),
			)
			m.IngestEvent(string(event.Type), "invalid")
			return nil
		}

		switch event.Type {
		case ingestion.EventUpsert:
			idx.Add(*event.Product)
			m.ProductIndexed()
			logger.Debug("product indexed", "product_id", event.Product.ID)
		case ingestion.EventDelete:
			removed := idx.Remove(event.ProductID)
			if removed {
				m.ProductRemoved()
			}
			logger.Debug("product removed", "product_id", event.ProductID, "existed", removed)
		}
		m.IngestEvent(string(event.Type), "applied")
		return nil
	}
}
