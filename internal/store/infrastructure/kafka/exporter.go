package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	orchdomain "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment-console/pkg/outbox"
	"github.com/dmehra2102/order-fulfillment-console/pkg/tracing"
)

const (
	aggregateOrder = "order"
	eventAudit     = "OrderAudit"
)

// AuditExporter queues audit events in the outbox; the relay publishes them.
type AuditExporter struct {
	store outbox.Store
}

func NewAuditExporter(store outbox.Store) *AuditExporter {
	return &AuditExporter{store: store}
}

func (x *AuditExporter) Export(ctx context.Context, events []orchdomain.AuditEvent) error {
	traceparent := tracing.Traceparent(ctx)
	batch := make([]outbox.Event, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode audit event: %w", err)
		}
		e := outbox.NewEvent(aggregateOrder, ev.OrderID, eventAudit, payload)
		e.Traceparent = traceparent
		batch = append(batch, e)
	}
	return x.store.Enqueue(ctx, batch...)
}
