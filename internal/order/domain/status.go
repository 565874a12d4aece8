package domain

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusPacked         OrderStatus = "PACKED"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

var allStatuses = []OrderStatus{
	StatusPending,
	StatusPacked,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// transitions lists every allowed next state. DELIVERED and CANCELLED are absorbing.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusPacked, StatusCancelled},
	StatusPacked:         {StatusShipped},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// forward is the manual advance path; PENDING advances through processing instead.
var forward = map[OrderStatus]OrderStatus{
	StatusPending:        StatusPacked,
	StatusPacked:         StatusShipped,
	StatusShipped:        StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Next reports the forward successor of s, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := forward[s]
	return n, ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }

// ParseStatus accepts any casing and surrounding whitespace.
func ParseStatus(v string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", v)
	}
	return s, nil
}

type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("no further status transition available for %s", e.From)
	}
	return fmt.Sprintf("transition %s -> %s not allowed", e.From, e.To)
}
