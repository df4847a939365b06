package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// Publisher delivers an order event to its sink.
type Publisher interface {
	Publish(ctx context.Context, ev model.OrderPlaced) error
	Close() error
}

// LogPublisher writes each event as a structured log line.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, ev model.OrderPlaced) error {
	obs.Logger.Info("order_placed",
		"order_id", ev.OrderID,
		"sequence", ev.Sequence,
		"total", ev.Total,
		"item_count", ev.ItemCount,
		"placed_at", ev.PlacedAt,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher produces events as JSON, keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a synchronous writer for topic. brokers is a
// comma-separated list of host:port.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaPublisher) Publish(ctx context.Context, ev model.OrderPlaced) error {
	b, err := json.Marshal(&ev)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: b,
		Time:  ev.PlacedAt,
	})
}

func (k *KafkaPublisher) Close() error { return k.writer.Close() }

// NewPublisher builds the sink selected by cfg.EventsSink.
func NewPublisher(cfg config.Config) (Publisher, error) {
	switch cfg.EventsSink {
	case "", "log":
		return LogPublisher{}, nil
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown events sink %q", cfg.EventsSink)
	}
}
