package console

import (
	"context"
	"strings"

	paydomain "github.com/dmehra2102/order-fulfillment-console/internal/payment/domain"
)

// Approve asks the operator to confirm a MockCard charge.
func (c *Console) Approve(_ context.Context, req paydomain.Request) (bool, error) {
	answer, err := c.prompt("Approve " + string(req.Mode) + " payment of BDT " + formatInt(req.Amount) + " for order " + req.OrderID + "? (Y/N): ")
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}
