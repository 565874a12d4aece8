package application

import "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"

// ProductRepository exposes the live products owned by the record store.
// Returned pointers are borrowed; the ledger mutates Stock in place.
type ProductRepository interface {
	Product(id string) (*domain.Product, bool)
	Products() []*domain.Product
}
