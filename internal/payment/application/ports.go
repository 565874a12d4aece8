package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment-console/internal/payment/domain"
)

// Approver supplies an external yes/no for modes that need one (MockCard).
// A nil Approver means no decision channel is available.
type Approver interface {
	Approve(ctx context.Context, req domain.Request) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, req domain.Request) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, req domain.Request) (bool, error) {
	return f(ctx, req)
}
