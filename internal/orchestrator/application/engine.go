package application

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	orchdomain "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	payapp "github.com/dmehra2102/order-fulfillment-console/internal/payment/application"
)

const (
	ReasonPaymentDeclined = "Payment Declined"
	reasonShortagePrefix  = "Inventory Shortage: "
	reasonInvalidPrefix   = "Invalid product "
)

// Engine drives orders through their lifecycle. It mutates borrowed orders and
// products in place and reports what happened; it never persists anything.
type Engine struct {
	log    *slog.Logger
	inv    Inventory
	pay    Payments
	tracer trace.Tracer
	now    func() time.Time

	// mu serializes reservation, payment and rollback so stock updates never interleave.
	mu sync.Mutex
}

func NewEngine(log *slog.Logger, inv Inventory, pay Payments) *Engine {
	return &Engine{
		log:    log,
		inv:    inv,
		pay:    pay,
		tracer: otel.Tracer("fulfillment-engine"),
		now:    time.Now,
	}
}

// ProcessOrder runs a PENDING order through validation, reservation, pricing
// and payment. It ends PACKED with an invoice or CANCELLED with a reason.
func (e *Engine) ProcessOrder(ctx context.Context, o *domain.Order, approver payapp.Approver) orchdomain.Outcome {
	ctx, span := e.tracer.Start(ctx, "engine.ProcessOrder", trace.WithAttributes(
		attribute.String("order.id", o.ID),
		attribute.String("order.status", o.Status.String()),
	))
	defer span.End()

	out := e.process(ctx, o, approver)
	e.finish(span, out)
	return out
}

// Advance moves an order one step. PENDING orders are processed; terminal
// orders are left untouched and the rejection is recorded.
func (e *Engine) Advance(ctx context.Context, o *domain.Order, approver payapp.Approver) orchdomain.Outcome {
	ctx, span := e.tracer.Start(ctx, "engine.Advance", trace.WithAttributes(
		attribute.String("order.id", o.ID),
		attribute.String("order.status", o.Status.String()),
	))
	defer span.End()

	var out orchdomain.Outcome
	switch {
	case o.Status == domain.StatusPending:
		out = e.process(ctx, o, approver)
	case o.Status.IsTerminal():
		out = orchdomain.Outcome{Order: o, From: o.Status}
		out.Message = "Order " + o.ID + " is " + o.Status.String() + "; status cannot be changed"
		out.Record(e.now(), "Status update rejected - order is "+o.Status.String())
	default:
		out = orchdomain.Outcome{Order: o, From: o.Status}
		next, err := o.Advance()
		if err != nil {
			out.Message = err.Error()
			out.Record(e.now(), "Status update rejected - "+err.Error())
			break
		}
		out.Applied = true
		out.Message = "Order " + o.ID + " status updated to " + next.String()
		out.Record(e.now(), "Status changed to "+next.String())
		if next == domain.StatusShipped {
			out.Record(e.now(), "Tracking ID assigned: "+o.TrackingID)
		}
	}
	e.finish(span, out)
	return out
}

func (e *Engine) process(ctx context.Context, o *domain.Order, approver payapp.Approver) orchdomain.Outcome {
	out := orchdomain.Outcome{Order: o, From: o.Status}
	if o.Status != domain.StatusPending {
		out.Message = "Order " + o.ID + " is " + o.Status.String() + "; only PENDING orders can be processed"
		out.Record(e.now(), "Processing rejected - order is "+o.Status.String())
		return out
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, it := range o.Items {
		if _, ok := e.inv.Product(it.ProductID); !ok {
			return e.cancel(out, reasonInvalidPrefix+it.ProductID)
		}
	}

	// Demand is summed per product so repeated lines cannot oversell.
	demand := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		demand[it.ProductID] += it.Quantity
		if !e.inv.CheckAvailable(it.ProductID, demand[it.ProductID]) {
			return e.cancel(out, reasonShortagePrefix+it.ProductID)
		}
	}

	reserved := make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if err := e.inv.Reserve(it.ProductID, it.Quantity); err != nil {
			e.log.Error("reservation failed after availability check", "order_id", o.ID, "product_id", it.ProductID, "err", err)
			e.release(o.ID, reserved)
			return e.cancel(out, reasonShortagePrefix+it.ProductID)
		}
		reserved = append(reserved, it)
	}
	out.Record(e.now(), "Inventory OK - stock reserved")

	var total int64
	for _, it := range o.Items {
		p, _ := e.inv.Product(it.ProductID)
		total += p.Price * int64(it.Quantity)
	}
	if err := o.Price(total); err != nil {
		// Unreachable while the order is PENDING under mu.
		e.release(o.ID, reserved)
		out.Message = err.Error()
		return out
	}

	// A declined order keeps its priced total.
	decision := e.pay.Authorize(ctx, o.ID, o.PaymentMode, total, approver)
	out.Record(e.now(), decision.LogMessage)
	if !decision.Approved() {
		e.release(o.ID, reserved)
		return e.cancel(out, ReasonPaymentDeclined)
	}

	if err := o.Pack(); err != nil {
		e.release(o.ID, reserved)
		out.Message = err.Error()
		return out
	}
	out.Applied = true
	out.Record(e.now(), "Status changed to "+domain.StatusPacked.String())

	inv := &orchdomain.Invoice{ID: domain.InvoiceID(o), OrderID: o.ID, Total: total}
	out.Invoice = inv
	out.Record(e.now(), "Invoice generated: "+inv.ID)
	out.Message = "Order " + o.ID + " packed, total BDT " + strconv.FormatInt(total, 10)

	e.log.Info("order processed", "order_id", o.ID, "status", o.Status, "total", total)
	return out
}

func (e *Engine) cancel(out orchdomain.Outcome, reason string) orchdomain.Outcome {
	if err := out.Order.Cancel(reason); err != nil {
		out.Message = err.Error()
		return out
	}
	out.Applied = true
	out.Message = "Order " + out.Order.ID + " cancelled: " + reason
	out.Record(e.now(), "Order cancelled - "+reason)
	e.log.Info("order cancelled", "order_id", out.Order.ID, "reason", reason)
	return out
}

func (e *Engine) release(orderID string, items []domain.OrderItem) {
	for _, it := range items {
		if err := e.inv.Release(it.ProductID, it.Quantity); err != nil {
			e.log.Error("stock rollback failed", "order_id", orderID, "product_id", it.ProductID, "err", err)
		}
	}
}

func (e *Engine) finish(span trace.Span, out orchdomain.Outcome) {
	span.SetAttributes(
		attribute.String("order.status.after", out.Order.Status.String()),
		attribute.Bool("outcome.applied", out.Applied),
	)
	if out.Order.Status == domain.StatusCancelled && out.From != domain.StatusCancelled {
		span.SetStatus(codes.Error, out.Order.CancelReason)
	}
}
