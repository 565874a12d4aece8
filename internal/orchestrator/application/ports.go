package application

import (
	"context"

	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	orchdomain "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	payapp "github.com/dmehra2102/order-fulfillment-console/internal/payment/application"
	paydomain "github.com/dmehra2102/order-fulfillment-console/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

type Inventory interface {
	Product(id string) (*invdomain.Product, bool)
	CheckAvailable(productID string, qty int) bool
	Reserve(productID string, qty int) error
	Release(productID string, qty int) error
}

type Payments interface {
	Authorize(ctx context.Context, orderID, mode string, amount int64, approver payapp.Approver) paydomain.Decision
}

// Records is the part of the record store the fulfillment service drives.
type Records interface {
	Products() []*invdomain.Product
	Order(id string) (*domain.Order, bool)
	NextOrderID() string
	AddOrder(o *domain.Order) error
	Restore(snap store.Snapshot)
	Save(ctx context.Context) error
}

// Journal receives the append-only side effects of an outcome.
type Journal interface {
	AppendOrderLog(orderID, message string) error
	AppendInvoice(invoiceID string, total int64) error
}

// Exporter forwards audit events to an external sink.
type Exporter interface {
	Export(ctx context.Context, events []orchdomain.AuditEvent) error
}
