package application

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	orchdomain "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	payapp "github.com/dmehra2102/order-fulfillment-console/internal/payment/application"
	paydomain "github.com/dmehra2102/order-fulfillment-console/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

var (
	ErrEmptyInput      = errors.New("input cannot be empty")
	ErrNoItems         = errors.New("order needs at least one item")
	ErrOrderNotFound   = errors.New("order not found")
	ErrNotCancelled    = errors.New("order is not cancelled")
	ErrNoProducts      = errors.New("no products available")
	ErrUnknownScenario = errors.New("unknown simulation scenario")
	ErrNoSeedReader    = errors.New("test data loading is not configured")
)

// Simulation scenarios.
const (
	ScenarioSuccess        = 1
	ScenarioPaymentFailure = 2
	ScenarioShortage       = 3
	ScenarioMixed          = 4
)

const simulatedAddress = "SimulatedAddress"

var orderIDPattern = regexp.MustCompile(`^O[0-9]+$`)

// SeedReader parses a test-data file into a snapshot.
type SeedReader func(path string) (store.Snapshot, error)

// Service is the entry point for every operation that creates or moves orders.
// Side effects are written after the in-memory outcome is settled; failures
// there are logged and never change the outcome.
type Service struct {
	log      *slog.Logger
	engine   *Engine
	records  Records
	journal  Journal
	exporter Exporter
	seed     SeedReader
	now      func() time.Time
}

func NewService(log *slog.Logger, engine *Engine, records Records, journal Journal) *Service {
	return &Service{
		log:     log,
		engine:  engine,
		records: records,
		journal: journal,
		now:     time.Now,
	}
}

func (s *Service) WithExporter(x Exporter) *Service {
	s.exporter = x
	return s
}

func (s *Service) WithSeedReader(r SeedReader) *Service {
	s.seed = r
	return s
}

// PlaceOrder creates a PENDING order and processes it immediately.
func (s *Service) PlaceOrder(ctx context.Context, items []domain.OrderItem, address, paymentMode string, approver payapp.Approver) (orchdomain.Outcome, error) {
	if strings.TrimSpace(address) == "" || strings.TrimSpace(paymentMode) == "" {
		return orchdomain.Outcome{}, ErrEmptyInput
	}
	if len(items) == 0 {
		return orchdomain.Outcome{}, ErrNoItems
	}
	o, err := domain.BuildOrder(s.records.NextOrderID(), s.today(), items, address, paymentMode)
	if err != nil {
		return orchdomain.Outcome{}, err
	}
	return s.submit(ctx, o, approver, "Order created via admin interface (pending)", ""), nil
}

func (s *Service) AdvanceStatus(ctx context.Context, orderID string, approver payapp.Approver) (orchdomain.Outcome, error) {
	o, ok := s.records.Order(orderID)
	if !ok {
		return orchdomain.Outcome{}, fmt.Errorf("%s: %w", domain.NormalizeOrderID(orderID), ErrOrderNotFound)
	}
	out := s.engine.Advance(ctx, o, approver)
	s.commit(ctx, out)
	return out, nil
}

// Reorder places a new order with the items, address and payment mode of any existing order.
func (s *Service) Reorder(ctx context.Context, orderID string, approver payapp.Approver) (orchdomain.Outcome, error) {
	src, ok := s.records.Order(orderID)
	if !ok {
		return orchdomain.Outcome{}, fmt.Errorf("%s: %w", domain.NormalizeOrderID(orderID), ErrOrderNotFound)
	}
	o, err := s.copyOrder(src)
	if err != nil {
		return orchdomain.Outcome{}, err
	}
	return s.submit(ctx, o, approver, "", "Reordered from "+src.ID), nil
}

// Retry is Reorder restricted to CANCELLED orders.
func (s *Service) Retry(ctx context.Context, orderID string, approver payapp.Approver) (orchdomain.Outcome, error) {
	src, ok := s.records.Order(orderID)
	if !ok {
		return orchdomain.Outcome{}, fmt.Errorf("%s: %w", domain.NormalizeOrderID(orderID), ErrOrderNotFound)
	}
	if src.Status != domain.StatusCancelled {
		return orchdomain.Outcome{}, fmt.Errorf("%s is %s: %w", src.ID, src.Status, ErrNotCancelled)
	}
	o, err := s.copyOrder(src)
	if err != nil {
		return orchdomain.Outcome{}, err
	}
	return s.submit(ctx, o, approver, "", "Retry successful for "+src.ID), nil
}

// Simulate runs a canned order through the real engine with no approval channel.
func (s *Service) Simulate(ctx context.Context, scenario int) (orchdomain.Outcome, error) {
	products := s.records.Products()
	if len(products) == 0 {
		return orchdomain.Outcome{}, ErrNoProducts
	}

	var items []domain.OrderItem
	mode := string(paydomain.ModeCOD)
	switch scenario {
	case ScenarioSuccess:
		items = []domain.OrderItem{{ProductID: products[0].ID, Quantity: 1}}
	case ScenarioPaymentFailure:
		items = []domain.OrderItem{{ProductID: products[0].ID, Quantity: 1}}
		mode = string(paydomain.ModeMockCard)
	case ScenarioShortage:
		p := shortageCandidate(products)
		items = []domain.OrderItem{{ProductID: p.ID, Quantity: int(p.Stock) + 5}}
	case ScenarioMixed:
		items = []domain.OrderItem{{ProductID: products[0].ID, Quantity: 1}}
		if len(products) > 1 {
			items = append(items, domain.OrderItem{ProductID: products[1].ID, Quantity: 1})
		}
	default:
		return orchdomain.Outcome{}, fmt.Errorf("%d: %w", scenario, ErrUnknownScenario)
	}

	o, err := domain.BuildOrder(s.records.NextOrderID(), s.today(), items, simulatedAddress, mode)
	if err != nil {
		return orchdomain.Outcome{}, err
	}
	if err := s.records.AddOrder(o); err != nil {
		return orchdomain.Outcome{}, err
	}
	out := s.engine.ProcessOrder(ctx, o, nil)
	out.Record(s.now(), "Simulation order with status: "+o.Status.String())
	s.commit(ctx, out)
	return out, nil
}

// shortageCandidate prefers a product with a little stock left so the shortage is realistic.
func shortageCandidate(products []*invdomain.Product) *invdomain.Product {
	for _, p := range products {
		if p.Stock > 0 && p.Stock < 10 {
			return p
		}
	}
	return products[0]
}

type ImportResult struct {
	Imported []string
	// Renamed maps ids from the file that were invalid or taken to the id issued instead.
	Renamed map[string]string
	Skipped []int
}

type importRecord struct {
	OrderID     string `json:"orderId"`
	Date        string `json:"date"`
	Address     string `json:"address"`
	PaymentMode string `json:"paymentMode"`
	Items       string `json:"items"`
}

// ImportOrders reads one JSON object per line and adds each as a PENDING order.
// Imported orders carry total 0 until they are processed.
func (s *Service) ImportOrders(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	res := ImportResult{Renamed: map[string]string{}}
	var events []orchdomain.AuditEvent
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec importRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Warn("import line skipped", "line", n, "err", err)
			res.Skipped = append(res.Skipped, n)
			continue
		}

		id := domain.NormalizeOrderID(rec.OrderID)
		if _, taken := s.records.Order(id); taken || !orderIDPattern.MatchString(id) {
			fresh := s.records.NextOrderID()
			res.Renamed[rec.OrderID] = fresh
			id = fresh
		}
		date := strings.TrimSpace(rec.Date)
		if date == "" {
			date = s.today()
		}
		o, err := domain.BuildOrder(id, date, domain.ParseItems(rec.Items), rec.Address, rec.PaymentMode)
		if err == nil {
			err = s.records.AddOrder(o)
		}
		if err != nil {
			s.log.Warn("import line skipped", "line", n, "err", err)
			res.Skipped = append(res.Skipped, n)
			continue
		}
		res.Imported = append(res.Imported, o.ID)
		events = append(events, orchdomain.AuditEvent{OrderID: o.ID, Message: "Order imported (pending)", At: s.now()})
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read import file: %w", err)
	}

	s.persist(ctx, events, nil)
	s.log.Info("orders imported", "count", len(res.Imported), "skipped", len(res.Skipped))
	return res, nil
}

type LoadResult struct {
	Products int
	Orders   int
	Admins   int
}

// LoadTestData replaces the in-memory collections with a seed file. Corrupt
// seed lines are skipped and returned as a warning alongside the result.
func (s *Service) LoadTestData(ctx context.Context, path string) (LoadResult, error) {
	if s.seed == nil {
		return LoadResult{}, ErrNoSeedReader
	}
	snap, err := s.seed(path)
	var corrupt *store.CorruptError
	if err != nil && !errors.As(err, &corrupt) {
		return LoadResult{}, err
	}
	s.records.Restore(snap)
	s.persist(ctx, nil, nil)
	s.log.Info("test data loaded", "path", path, "products", len(snap.Products), "orders", len(snap.Orders))
	return LoadResult{Products: len(snap.Products), Orders: len(snap.Orders), Admins: len(snap.Admins)}, err
}

func (s *Service) copyOrder(src *domain.Order) (*domain.Order, error) {
	mode := src.PaymentMode
	if strings.TrimSpace(mode) == "" {
		mode = string(paydomain.ModeCOD)
	}
	return domain.BuildOrder(s.records.NextOrderID(), s.today(), src.CopyItems(), src.Address, mode)
}

// submit stores o and processes it. created is logged up front, packed only
// when the order reaches PACKED; either may be empty.
func (s *Service) submit(ctx context.Context, o *domain.Order, approver payapp.Approver, created, packed string) orchdomain.Outcome {
	if err := s.records.AddOrder(o); err != nil {
		// NextOrderID guarantees uniqueness; this only fires on a corrupted store.
		s.log.Error("order not stored", "order_id", o.ID, "err", err)
	}
	var before []orchdomain.AuditEvent
	if created != "" {
		before = append(before, orchdomain.AuditEvent{OrderID: o.ID, Message: created, At: s.now()})
	}
	out := s.engine.ProcessOrder(ctx, o, approver)
	out.Events = append(before, out.Events...)
	if packed != "" && o.Status == domain.StatusPacked {
		out.Record(s.now(), packed)
	}
	s.commit(ctx, out)
	return out
}

func (s *Service) commit(ctx context.Context, out orchdomain.Outcome) {
	s.persist(ctx, out.Events, out.Invoice)
}

func (s *Service) persist(ctx context.Context, events []orchdomain.AuditEvent, inv *orchdomain.Invoice) {
	if err := s.records.Save(ctx); err != nil {
		s.log.Error("save failed", "err", err)
	}
	for _, ev := range events {
		if err := s.journal.AppendOrderLog(ev.OrderID, ev.Message); err != nil {
			s.log.Error("order log write failed", "order_id", ev.OrderID, "err", err)
		}
	}
	if inv != nil {
		if err := s.journal.AppendInvoice(inv.ID, inv.Total); err != nil {
			s.log.Error("invoice write failed", "invoice_id", inv.ID, "err", err)
		}
	}
	if s.exporter != nil && len(events) > 0 {
		if err := s.exporter.Export(ctx, events); err != nil {
			s.log.Error("audit export failed", "err", err)
		}
	}
}

func (s *Service) today() string {
	return s.now().Format(time.DateOnly)
}
