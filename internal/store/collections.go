package store

import (
	"fmt"
	"strings"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

func (s *Store) Products() []*invdomain.Product {
	return s.products
}

func (s *Store) Product(id string) (*invdomain.Product, bool) {
	i, ok := s.productIdx[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	return s.products[i], true
}

func (s *Store) AddProduct(p invdomain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := s.productIdx[p.ID]; ok {
		return fmt.Errorf("%s: %w", p.ID, ErrProductExists)
	}
	s.productIdx[p.ID] = len(s.products)
	s.products = append(s.products, &p)
	return nil
}

// RemoveProduct deletes a product and compacts the collection.
func (s *Store) RemoveProduct(id string) error {
	i, ok := s.productIdx[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.productIdx, id)
	for j := i; j < len(s.products); j++ {
		s.productIdx[s.products[j].ID] = j
	}
	return nil
}

func (s *Store) Orders() []*domain.Order {
	return s.orders
}

// Order looks an order up by operator input, normalizing it first.
func (s *Store) Order(id string) (*domain.Order, bool) {
	i, ok := s.orderIdx[domain.NormalizeOrderID(id)]
	if !ok {
		return nil, false
	}
	return s.orders[i], true
}

// NextOrderID issues a fresh, strictly increasing order id.
func (s *Store) NextOrderID() string {
	id := domain.FormatOrderID(s.nextOrderNumber)
	s.nextOrderNumber++
	return id
}

func (s *Store) AddOrder(o *domain.Order) error {
	key := domain.NormalizeOrderID(o.ID)
	if _, ok := s.orderIdx[key]; ok {
		return fmt.Errorf("%s: %w", o.ID, ErrOrderExists)
	}
	s.orderIdx[key] = len(s.orders)
	s.orders = append(s.orders, o)
	if n := domain.OrderNumber(o.ID); n >= s.nextOrderNumber {
		s.nextOrderNumber = n + 1
	}
	return nil
}

// RetainOrders rebuilds the active set from the orders for which keep returns
// true, preserving relative order, and returns the removed ones.
func (s *Store) RetainOrders(keep func(*domain.Order) bool) []*domain.Order {
	var removed []*domain.Order
	kept := s.orders[:0:0]
	for _, o := range s.orders {
		if keep(o) {
			kept = append(kept, o)
		} else {
			removed = append(removed, o)
		}
	}
	s.orders = kept
	s.orderIdx = make(map[string]int, len(kept))
	for i, o := range kept {
		s.orderIdx[domain.NormalizeOrderID(o.ID)] = i
	}
	return removed
}

func (s *Store) Admins() []*admindomain.Admin {
	return s.admins
}

func (s *Store) Admin(username string) (*admindomain.Admin, bool) {
	for _, a := range s.admins {
		if a.Username == username {
			return a, true
		}
	}
	return nil, false
}

func (s *Store) AddAdmin(a admindomain.Admin) error {
	if _, ok := s.Admin(a.Username); ok {
		return fmt.Errorf("%s: %w", a.Username, ErrAdminExists)
	}
	s.admins = append(s.admins, &a)
	return nil
}
