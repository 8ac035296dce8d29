package data

import (
	"context"
	"fmt"

	"moviecatalog/internal/biz"
	"moviecatalog/internal/conf"

	json "github.com/goccy/go-json"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/segmentio/kafka-go"
)

// kafkaEventPublisher writes catalog events to a kafka topic, keyed by
// movie ID so events for one movie stay ordered within a partition.
type kafkaEventPublisher struct {
	writer *kafka.Writer
	log    *log.Helper
}

// NewEventPublisher creates the catalog event publisher. Without configured
// brokers events are dropped silently via a no-op publisher.
func NewEventPublisher(c *conf.Data, logger log.Logger) (biz.EventPublisher, func()) {
	l := log.NewHelper(logger)
	if len(c.Kafka.Brokers) == 0 {
		l.Info("kafka brokers not configured, catalog events disabled")
		return noopEventPublisher{}, func() {}
	}

	topic := c.Kafka.Topic
	if topic == "" {
		topic = "catalog-events"
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(c.Kafka.Brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	p := &kafkaEventPublisher{writer: writer, log: l}
	cleanup := func() {
		if err := writer.Close(); err != nil {
			l.Errorf("failed to close kafka writer: %v", err)
		}
	}
	return p, cleanup
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event *biz.CatalogEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.MovieID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to write catalog event: %w", err)
	}
	return nil
}

// NopEventPublisher returns a publisher that drops every event, for wiring
// the use cases without a broker (CLI, tests).
func NopEventPublisher() biz.EventPublisher { return noopEventPublisher{} }

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, *biz.CatalogEvent) error { return nil }
