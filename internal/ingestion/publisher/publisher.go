// Package publisher emits product change events to Kafka. Events are keyed
// by product id so every change to one product stays on one partition and
// is applied in order.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/kafka"
)

// BatchPublisher is satisfied by *kafka.Producer.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

type Publisher struct {
	producer BatchPublisher
	now      func() time.Time
	logger   *slog.Logger
}

func New(producer BatchPublisher) *Publisher {
	return &Publisher{
		producer: producer,
		now:      time.Now,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Upsert validates every product and publishes one upsert event each. No
// event is sent if any product is invalid.
func (p *Publisher) Upsert(ctx context.Context, products []catalog.Product) error {
	events := make([]ingestion.ProductEvent, 0, len(products))
	for i := range products {
		ev := ingestion.ProductEvent{
			Type:      ingestion.EventUpsert,
			Product:   &products[i],
			EmittedAt: p.now().UTC(),
		}
		if err := validator.ValidateEvent(&ev); err != nil {
			return fmt.Errorf("product %d: %w", products[i].ID, err)
		}
		events = append(events, ev)
	}
	return p.publish(ctx, events)
}

func (p *Publisher) Delete(ctx context.Context, ids []uint32) error {
	events := make([]ingestion.ProductEvent, 0, len(ids))
	for _, id := range ids {
		events = append(events, ingestion.ProductEvent{
			Type:      ingestion.EventDelete,
			ProductID: id,
			EmittedAt: p.now().UTC(),
		})
	}
	return p.publish(ctx, events)
}

func (p *Publisher) publish(ctx context.Context, events []ingestion.ProductEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := make([]kafka.Event, 0, len(events))
	for _, ev := range events {
		batch = append(batch, kafka.Event{
			Key:   strconv.FormatUint(uint64(ev.TargetID()), 10),
			Value: ev,
		})
	}
	if err := p.producer.PublishBatch(ctx, batch); err != nil {
		return fmt.Errorf("publishing product events: %w", err)
	}
	p.logger.Info("product events published", "count", len(batch), "type", events[0].Type)
	return nil
}
