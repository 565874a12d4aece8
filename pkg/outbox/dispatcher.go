package outbox

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/order-fulfillment-console/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Deduper remembers event ids that were already published.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topic    string
	dedupe   Deduper
}

func NewDispatcher(log *slog.Logger, producer Producer, topic string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topic: topic}
}

// WithDeduper skips events whose EventID the deduper has already seen.
func (d *Dispatcher) WithDeduper(dd Deduper) *Dispatcher {
	d.dedupe = dd
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	key := d.topic + ":" + event.EventID
	if d.dedupe != nil && event.EventID != "" {
		seen, err := d.dedupe.Seen(ctx, key)
		if err != nil {
			// Publishing twice beats not publishing.
			d.log.Warn("dedupe lookup failed", "event_id", event.EventID, "err", err)
		} else if seen {
			d.log.Info("outbox duplicate skipped", "event_id", event.EventID)
			return nil
		}
	}

	headers := make([]kafka.Header, 0, len(event.Headers)+3)
	for k, v := range event.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers,
		kafka.Header{Key: "event_type", Value: []byte(event.Type)},
		kafka.Header{Key: "event_id", Value: []byte(event.EventID)},
	)
	if event.Traceparent != "" {
		headers = append(headers, kafka.Header{Key: tracing.TraceparentHeader, Value: []byte(event.Traceparent)})
	} else {
		headers = tracing.InjectKafkaHeaders(ctx, headers)
	}

	msg := kafka.Message{
		Topic:   d.topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", event.EventID, "err", err)
		if d.dedupe != nil && event.EventID != "" {
			if ferr := d.dedupe.Forget(ctx, key); ferr != nil {
				d.log.Warn("dedupe forget failed", "event_id", event.EventID, "err", ferr)
			}
		}
		return err
	}
	d.log.Info("outbox dispatched", "event_id", event.EventID, "type", event.Type)
	return nil
}
