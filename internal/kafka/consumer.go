package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageReader is the part of kafka.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader     messageReader
	log        zerolog.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, groupID, topic string, log zerolog.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}), log, time.Second)
}

func newConsumer(r messageReader, log zerolog.Logger, backoff time.Duration) *Consumer {
	return &Consumer{reader: r, log: log, backoff: backoff, maxBackoff: 30 * backoff}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume commits a message only after handler accepted it. A failing
// handler is retried with exponential backoff, so one bad write neither
// loses the event nor stops the loop. Consume returns when ctx ends or
// the reader fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.handle(ctx, msg, handler); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler func(context.Context, kafka.Message) error) error {
	delay := c.backoff
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}
		c.log.Warn().Err(err).
			Int64("offset", msg.Offset).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("handle message")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, c.maxBackoff)
	}
}

// ConsumeBookings decodes booking events and hands them to handle.
// Undecodable messages are logged and skipped.
func (c *Consumer) ConsumeBookings(ctx context.Context, handle func(context.Context, BookingEvent) error) error {
	err := c.Consume(ctx, BookingHandler(c.log, handle))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func BookingHandler(log zerolog.Logger, handle func(context.Context, BookingEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping undecodable booking event")
			return nil
		}
		return handle(ctx, event)
	}
}
