package application

import (
	"fmt"
	"log/slog"

	"github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
)

// DefaultLowStockThreshold flags products with fewer units than this.
const DefaultLowStockThreshold = 5

// Ledger tracks stock levels. Reserve and Release are exact inverses.
// It is not safe for concurrent use; callers serialize reservation sequences.
type Ledger struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewLedger(log *slog.Logger, repo ProductRepository) *Ledger {
	return &Ledger{log: log, repo: repo}
}

func (l *Ledger) Product(id string) (*domain.Product, bool) {
	return l.repo.Product(id)
}

func (l *Ledger) CheckAvailable(productID string, qty int) bool {
	p, ok := l.repo.Product(productID)
	if !ok || qty <= 0 {
		return false
	}
	return int64(qty) <= p.Stock
}

func (l *Ledger) Reserve(productID string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	p, ok := l.repo.Product(productID)
	if !ok {
		return fmt.Errorf("reserve %s: %w", productID, domain.ErrUnknownProduct)
	}
	if int64(qty) > p.Stock {
		return fmt.Errorf("reserve %d of %s (stock %d): %w", qty, productID, p.Stock, domain.ErrInsufficientStock)
	}
	p.Stock -= int64(qty)
	l.log.Debug("stock reserved", "product_id", productID, "qty", qty, "stock", p.Stock)
	return nil
}

func (l *Ledger) Release(productID string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	p, ok := l.repo.Product(productID)
	if !ok {
		return fmt.Errorf("release %s: %w", productID, domain.ErrUnknownProduct)
	}
	p.Stock += int64(qty)
	l.log.Debug("stock released", "product_id", productID, "qty", qty, "stock", p.Stock)
	return nil
}

// Restock adds operator-supplied units and returns the new stock level.
func (l *Ledger) Restock(productID string, qty int) (int64, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	p, ok := l.repo.Product(productID)
	if !ok {
		return 0, fmt.Errorf("restock %s: %w", productID, domain.ErrUnknownProduct)
	}
	p.Stock += int64(qty)
	l.log.Info("product restocked", "product_id", productID, "added", qty, "stock", p.Stock)
	return p.Stock, nil
}

// LowStock lists products whose stock is below threshold, in catalog order.
func (l *Ledger) LowStock(threshold int64) []domain.Product {
	var out []domain.Product
	for _, p := range l.repo.Products() {
		if p.Stock < threshold {
			out = append(out, *p)
		}
	}
	return out
}
