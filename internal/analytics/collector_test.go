package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) published() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Event(nil), p.events...)
}

func TestCollectorPublishesTrackedEvents(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 16, nil)
	c.Start(context.Background())

	c.Track(SearchEvent{Type: EventSearch, Query: "camisa", Returned: 2})
	c.Track(SearchEvent{Type: EventZeroResult, Query: "sapato"})
	c.Close()

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, "search", events[0].Key)
	assert.Equal(t, "camisa", events[0].Value.(SearchEvent).Query)
	assert.Equal(t, "zero_result", events[1].Key)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	m := metrics.New()
	pub := &recordingPublisher{}
	c := NewCollector(pub, 1, m)

	// not started: the second event cannot fit
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalyticsDropsTotal))

	c.Start(context.Background())
	c.Close()
	assert.Len(t, pub.published(), 1)
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 8, nil)
	for i := 0; i < 3; i++ {
		c.Track(SearchEvent{Query: "q"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)
	c.Close()

	// publish errors are logged, not retried
	assert.Len(t, pub.published(), 3)
}
