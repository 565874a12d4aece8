package domain

import (
	"time"

	orderdomain "github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

// AuditEvent is one "Order <id> - <message>" line in the order log.
type AuditEvent struct {
	OrderID string    `json:"order_id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Invoice struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Total   int64  `json:"total"`
}

// Outcome is what a lifecycle step did to an order. Applied is false when the
// step was rejected and the order was left as it was.
type Outcome struct {
	Order   *orderdomain.Order
	From    orderdomain.OrderStatus
	Applied bool
	Message string
	Events  []AuditEvent
	Invoice *Invoice
}

func (o *Outcome) Record(at time.Time, message string) {
	o.Events = append(o.Events, AuditEvent{OrderID: o.Order.ID, Message: message, At: at})
}

// Status is the order's status after the step.
func (o Outcome) Status() orderdomain.OrderStatus {
	return o.Order.Status
}
