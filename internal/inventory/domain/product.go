package domain

import "errors"

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidPrice      = errors.New("price must not be negative")
)

// Product is a catalog entry. Price is in minor currency units.
type Product struct {
	ID       string
	Category string
	Brand    string
	Name     string
	Price    int64
	Stock    int64
}

func (p Product) Validate() error {
	if p.ID == "" {
		return errors.New("product id is empty")
	}
	if p.Category == "" || p.Brand == "" || p.Name == "" {
		return errors.New("product category, brand and name are required")
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}
