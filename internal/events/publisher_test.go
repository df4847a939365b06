package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherEncodesEvent(t *testing.T) {
	fw := &fakeWriter{}
	p := &KafkaPublisher{writer: fw}
	placed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := model.OrderPlaced{OrderID: "o-1", Subtotal: 20.01, Shipping: 5, Total: 25.01, ItemCount: 1, PlacedAt: placed, Sequence: 7}

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("o-1"), fw.msgs[0].Key)
	assert.Equal(t, placed, fw.msgs[0].Time)

	var got model.OrderPlaced
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, ev, got)

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	werr := errors.New("leader not available")
	p := &KafkaPublisher{writer: &fakeWriter{err: werr}}
	assert.ErrorIs(t, p.Publish(context.Background(), model.OrderPlaced{OrderID: "x"}), werr)
}

func TestNewKafkaPublisherParsesBrokers(t *testing.T) {
	p := NewKafkaPublisher(" a:9092, ,b:9092 ", "orders")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "orders", w.Topic)
	addr := w.Addr.String()
	assert.Contains(t, addr, "a:9092")
	assert.Contains(t, addr, "b:9092")
	assert.NotContains(t, addr, " ")
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.Config{EventsSink: "log"})
	require.NoError(t, err)
	assert.IsType(t, LogPublisher{}, p)
	require.NoError(t, p.Publish(context.Background(), model.OrderPlaced{OrderID: "x"}))

	p, err = NewPublisher(config.Config{EventsSink: "kafka", KafkaBrokers: "localhost:9092", KafkaTopic: "t"})
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)

	_, err = NewPublisher(config.Config{EventsSink: "carrier-pigeon"})
	assert.Error(t, err)
}
