package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	brokers []string
	topic   string
	writer  *kafka.Writer
	log     zerolog.Logger
}

func NewProducer(brokers []string, topic string, log zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		topic:   topic,
		writer:  writer,
		log:     log,
	}
}

// PublishBooking writes the event keyed by booking id, so every event of
// one booking lands on the same partition in order.
func (p *Producer) PublishBooking(ctx context.Context, event BookingEvent) error {
	return p.Publish(ctx, p.topic, strconv.FormatInt(event.BookingID, 10), event)
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug().Str("topic", topic).Str("key", key).Msg("published")
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, event BookingEvent, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.PublishBooking(ctx, event)
		if err == nil {
			return nil
		}

		lastErr = err
		p.log.Warn().Err(err).Int("attempt", i+1).Str("event", event.Type).Msg("publish failed")

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker; used at startup to warn early.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(p.topic); err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	return nil
}
