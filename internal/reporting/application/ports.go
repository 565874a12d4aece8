package application

import (
	"context"

	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

type Records interface {
	Products() []*invdomain.Product
	Product(id string) (*invdomain.Product, bool)
	Orders() []*domain.Order
	Order(id string) (*domain.Order, bool)
	RetainOrders(keep func(*domain.Order) bool) []*domain.Order
	Save(ctx context.Context) error
}

// Documents is where derived output lands.
type Documents interface {
	AppendArchive(orders []domain.Order) error
	AppendOrderLog(orderID, message string) error
	WriteDocument(name, content string) (string, error)
}
