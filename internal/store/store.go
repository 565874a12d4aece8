// Package store owns every live Product, Order and Admin. Other components borrow
// pointers from it and hand outcomes back for persistence.
//
// The store is not safe for concurrent use. The console drives it from a single
// goroutine; anything that processes orders concurrently must serialize access.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

var (
	ErrProductExists   = errors.New("product already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderExists     = errors.New("order already exists")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAdminExists     = errors.New("admin already exists")
	ErrAdminNotFound   = errors.New("admin not found")
)

// Snapshot is a detached copy of every collection, the unit of persistence.
type Snapshot struct {
	Products []invdomain.Product
	Orders   []domain.Order
	Admins   []admindomain.Admin
	// HighWater is the largest order number ever issued, including archived orders.
	HighWater int
}

type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// CorruptError reports unparseable lines. Loading continues past them.
type CorruptError struct {
	File  string
	Lines []int
}

func (e *CorruptError) Error() string {
	nums := make([]string, 0, len(e.Lines))
	for _, n := range e.Lines {
		nums = append(nums, fmt.Sprint(n))
	}
	return fmt.Sprintf("%s: %d corrupt line(s) skipped (%s)", e.File, len(e.Lines), strings.Join(nums, ", "))
}

type Store struct {
	log       *slog.Logger
	persister Persister
	mirror    Persister

	products   []*invdomain.Product
	productIdx map[string]int
	orders     []*domain.Order
	orderIdx   map[string]int
	admins     []*admindomain.Admin

	nextOrderNumber int
}

func New(log *slog.Logger, persister Persister) *Store {
	s := &Store{log: log, persister: persister}
	s.reset(Snapshot{})
	return s
}

// WithMirror registers a secondary persister written after the primary. Its
// failures are logged and never fail a save.
func (s *Store) WithMirror(m Persister) *Store {
	s.mirror = m
	return s
}

// Load replaces memory with the persisted state. A *CorruptError (possibly joined
// with others) still leaves the readable records loaded; callers treat it as a warning.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)
	var corrupt *CorruptError
	if err != nil && !errors.As(err, &corrupt) {
		return fmt.Errorf("load store: %w", err)
	}
	s.reset(snap)
	if len(s.admins) == 0 {
		def := admindomain.DefaultAdmin()
		s.admins = append(s.admins, &def)
		s.log.Warn("no administrators loaded, default account synthesized", "username", def.Username)
	}
	s.log.Info("store loaded", "products", len(s.products), "orders", len(s.orders), "admins", len(s.admins), "next_order", domain.FormatOrderID(s.nextOrderNumber))
	return err
}

// Restore replaces memory with snap, as used by test-data loading.
func (s *Store) Restore(snap Snapshot) {
	if snap.HighWater < s.nextOrderNumber-1 {
		snap.HighWater = s.nextOrderNumber - 1
	}
	admins := s.admins
	s.reset(snap)
	if len(s.admins) == 0 {
		s.admins = admins
	}
}

func (s *Store) Save(ctx context.Context) error {
	snap := s.Snapshot()
	if err := s.persister.Save(ctx, snap); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Save(ctx, snap); err != nil {
			s.log.Error("mirror save failed", "err", err)
		}
	}
	return nil
}

func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Products:  make([]invdomain.Product, 0, len(s.products)),
		Orders:    make([]domain.Order, 0, len(s.orders)),
		Admins:    make([]admindomain.Admin, 0, len(s.admins)),
		HighWater: s.nextOrderNumber - 1,
	}
	for _, p := range s.products {
		snap.Products = append(snap.Products, *p)
	}
	for _, o := range s.orders {
		c := *o
		c.Items = o.CopyItems()
		snap.Orders = append(snap.Orders, c)
	}
	for _, a := range s.admins {
		snap.Admins = append(snap.Admins, *a)
	}
	return snap
}

func (s *Store) reset(snap Snapshot) {
	s.products = make([]*invdomain.Product, 0, len(snap.Products))
	s.productIdx = make(map[string]int, len(snap.Products))
	for i := range snap.Products {
		p := snap.Products[i]
		if _, dup := s.productIdx[p.ID]; dup {
			s.log.Warn("duplicate product skipped", "product_id", p.ID)
			continue
		}
		s.productIdx[p.ID] = len(s.products)
		s.products = append(s.products, &p)
	}

	high := domain.FirstOrderNumber - 1
	if snap.HighWater > high {
		high = snap.HighWater
	}
	s.orders = make([]*domain.Order, 0, len(snap.Orders))
	s.orderIdx = make(map[string]int, len(snap.Orders))
	for i := range snap.Orders {
		o := snap.Orders[i]
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		key := domain.NormalizeOrderID(o.ID)
		if _, dup := s.orderIdx[key]; dup {
			s.log.Warn("duplicate order skipped", "order_id", o.ID)
			continue
		}
		s.orderIdx[key] = len(s.orders)
		s.orders = append(s.orders, &o)
		if n := domain.OrderNumber(o.ID); n > high {
			high = n
		}
	}
	s.nextOrderNumber = high + 1

	s.admins = make([]*admindomain.Admin, 0, len(snap.Admins))
	for i := range snap.Admins {
		a := snap.Admins[i]
		s.admins = append(s.admins, &a)
	}
}
