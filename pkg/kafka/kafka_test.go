package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/config"
)

// fakeReader serves queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	fetchErrs int
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.fetchErrs > 0 {
		r.fetchErrs--
		r.mu.Unlock()
		return kafka.Message{}, errors.New("transient")
	}
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	reader := &fakeReader{
		fetchErrs: 1,
		queue: []kafka.Message{
			{Offset: 1, Key: []byte("1"), Value: []byte(`ok`)},
			{Offset: 2, Key: []byte("2"), Value: []byte(`fail`)},
			{Offset: 3, Key: []byte("3"), Value: []byte(`ok`)},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	handler := func(_ context.Context, key, value []byte) error {
		seen = append(seen, string(key))
		if string(value) == "fail" {
			return errors.New("rejected")
		}
		if string(key) == "3" {
			cancel()
		}
		return nil
	}

	err := NewConsumerWithReader(reader, "product-events", handler).Start(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, seen)
	assert.Equal(t, []int64{1, 3}, reader.committed)
	assert.True(t, reader.closed)
}

func TestEachStartReplaysFromFirstOffset(t *testing.T) {
	cfg := config.KafkaConfig{Brokers: []string{"localhost:9092"}, ConsumerGroup: "megastore-search"}

	first := readerConfig(cfg, "product-events")
	restarted := readerConfig(cfg, "product-events")

	// a group that committed offsets before the restart must not be rejoined
	assert.NotEqual(t, first.GroupID, restarted.GroupID)
	for _, rc := range []kafka.ReaderConfig{first, restarted} {
		assert.True(t, strings.HasPrefix(rc.GroupID, "megastore-search-"), rc.GroupID)
		assert.Equal(t, kafka.FirstOffset, rc.StartOffset)
		assert.Equal(t, "product-events", rc.Topic)
	}

	assert.True(t, strings.HasPrefix(readerConfig(config.KafkaConfig{}, "t").GroupID, "megastore-search-"))
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducerEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "product-events")

	require.NoError(t, p.Publish(context.Background(), Event{
		Key:   "11",
		Value: map[string]any{"type": "delete", "product_id": 11},
	}))
	require.NoError(t, p.PublishBatch(context.Background(), nil))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "11", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"type":"delete","product_id":11}`, string(w.msgs[0].Value))
}

func TestProducerErrors(t *testing.T) {
	t.Run("unmarshalable value", func(t *testing.T) {
		p := NewProducerWithWriter(&fakeWriter{}, "t")
		err := p.Publish(context.Background(), Event{Key: "k", Value: make(chan int)})
		assert.Error(t, err)
	})
	t.Run("write failure", func(t *testing.T) {
		p := NewProducerWithWriter(&fakeWriter{err: errors.New("no leader")}, "t")
		err := p.Publish(context.Background(), Event{Key: "k", Value: 1})
		assert.ErrorContains(t, err, "no leader")
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		ID uint32 `json:"id"`
	}
	got, err := DecodeJSON[payload]([]byte(`{"id":7}`))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got.ID)

	_, err = DecodeJSON[payload]([]byte(`{`))
	assert.Error(t, err)
}
