package domain

import (
	"errors"
	"strings"
)

// MaxItems bounds the number of lines a single order may carry.
const MaxItems = 10

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOrderFull       = errors.New("order item capacity reached")
	ErrEmptyProductID  = errors.New("product id is empty")
)

type Order struct {
	ID           string
	Date         string // YYYY-MM-DD
	Address      string
	PaymentMode  string
	Status       OrderStatus
	Items        []OrderItem
	Total        int64
	CancelReason string
	TrackingID   string
}

type OrderItem struct {
	ProductID string
	Quantity  int
}

// NewOrder returns an empty PENDING order.
func NewOrder(id, date string) *Order {
	return &Order{
		ID:     id,
		Date:   date,
		Status: StatusPending,
		Items:  make([]OrderItem, 0, MaxItems),
	}
}

// BuildOrder is the single factory used by every entry point that creates orders.
// Items that cannot be added abort construction with the first error.
func BuildOrder(id, date string, items []OrderItem, address, paymentMode string) (*Order, error) {
	o := NewOrder(id, date)
	o.Address = strings.TrimSpace(address)
	o.PaymentMode = strings.TrimSpace(paymentMode)
	for _, it := range items {
		if err := o.AddItem(it); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Order) AddItem(it OrderItem) error {
	it.ProductID = strings.TrimSpace(it.ProductID)
	if it.ProductID == "" {
		return ErrEmptyProductID
	}
	if it.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if len(o.Items) >= MaxItems {
		return ErrOrderFull
	}
	o.Items = append(o.Items, it)
	return nil
}

// CopyItems returns a detached copy of the item list, used by reorder and retry.
func (o *Order) CopyItems() []OrderItem {
	out := make([]OrderItem, len(o.Items))
	copy(out, o.Items)
	return out
}

// Cancel moves the order to CANCELLED with the given reason. Only PENDING orders may be cancelled.
func (o *Order) Cancel(reason string) error {
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// Price records the total of a PENDING order. It stays on the order through
// packing and through a later cancellation.
func (o *Order) Price(total int64) error {
	if o.Status != StatusPending {
		return &TransitionError{From: o.Status, To: StatusPacked}
	}
	o.Total = total
	return nil
}

// Pack moves a priced PENDING order to PACKED.
func (o *Order) Pack() error {
	return o.transition(StatusPacked)
}

// Advance performs the next manual step after PACKED and returns the new status.
func (o *Order) Advance() (OrderStatus, error) {
	next, ok := o.Status.Next()
	if !ok || o.Status == StatusPending {
		return o.Status, &TransitionError{From: o.Status, To: next}
	}
	if err := o.transition(next); err != nil {
		return o.Status, err
	}
	if next == StatusShipped {
		o.TrackingID = TrackingID(o.ID)
	}
	return next, nil
}

func (o *Order) transition(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return &TransitionError{From: o.Status, To: to}
	}
	o.Status = to
	return nil
}
