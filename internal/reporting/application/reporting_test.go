package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

type nopPersister struct{}

func (nopPersister) Load(context.Context) (store.Snapshot, error) { return store.Snapshot{}, nil }
func (nopPersister) Save(context.Context, store.Snapshot) error   { return nil }

type memDocs struct {
	archive []domain.Order
	logs    map[string][]string
	files   map[string]string
}

func newMemDocs() *memDocs {
	return &memDocs{logs: map[string][]string{}, files: map[string]string{}}
}

func (d *memDocs) AppendArchive(orders []domain.Order) error {
	d.archive = append(d.archive, orders...)
	return nil
}

func (d *memDocs) AppendOrderLog(orderID, message string) error {
	d.logs[orderID] = append(d.logs[orderID], message)
	return nil
}

func (d *memDocs) WriteDocument(name, content string) (string, error) {
	d.files[name] = content
	return "data/" + name, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seeded(t *testing.T, orders ...*domain.Order) *store.Store {
	s := store.New(discard(), nopPersister{})
	require.NoError(t, s.AddProduct(invdomain.Product{ID: "P1", Category: "Phone", Brand: "Acme", Name: "A1", Price: 150, Stock: 4}))
	for _, o := range orders {
		require.NoError(t, s.AddOrder(o))
	}
	return s
}

func ord(id, date string, st domain.OrderStatus, total int64, reason string) *domain.Order {
	o := domain.NewOrder(id, date)
	o.Status = st
	o.Total = total
	o.CancelReason = reason
	o.Address = "Road 1"
	_ = o.AddItem(domain.OrderItem{ProductID: "P1", Quantity: 2})
	return o
}

func ids(s *store.Store) []string {
	var out []string
	for _, o := range s.Orders() {
		out = append(out, o.ID)
	}
	return out
}

func TestArchive_MovesOnlyOldDeliveredOrders(t *testing.T) {
	s := seeded(t,
		ord("O1001", "2024-01-01", domain.StatusDelivered, 300, ""),
		ord("O1002", "2024-05-10", domain.StatusDelivered, 300, ""),
		ord("O1003", "2024-01-01", domain.StatusCancelled, 0, "Payment Declined"),
		ord("O1004", "2024-02-01", domain.StatusDelivered, 300, ""),
	)
	docs := newMemDocs()
	a := NewArchiver(discard(), s, docs)
	today := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)

	res, err := a.Archive(context.Background(), 30, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"O1001", "O1004"}, res.Archived)
	assert.Equal(t, []string{"O1002", "O1003"}, ids(s))
	require.Len(t, docs.archive, 2)
	// 2024-05-17 vs 2024-01-01: (5*30+17) - (1*30+1) = 136
	assert.Equal(t, []string{"Archived after delivery (age 136 days)"}, docs.logs["O1001"])

	again, err := a.Archive(context.Background(), 30, today)
	require.NoError(t, err)
	assert.Empty(t, again.Archived)
	assert.Len(t, docs.archive, 2)
}

func TestArchive_AgeMustExceedDays(t *testing.T) {
	s := seeded(t, ord("O1001", "2024-05-07", domain.StatusDelivered, 300, ""))
	a := NewArchiver(discard(), s, newMemDocs())
	today := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)

	res, err := a.Archive(context.Background(), 10, today)
	require.NoError(t, err)
	assert.Empty(t, res.Archived)

	res, err = a.Archive(context.Background(), 9, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"O1001"}, res.Archived)
}

func TestArchive_RejectsNonPositiveDays(t *testing.T) {
	a := NewArchiver(discard(), seeded(t), newMemDocs())
	_, err := a.Archive(context.Background(), 0, time.Now())
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestReport_RanksReasonsDeterministically(t *testing.T) {
	s := seeded(t,
		ord("O1001", "2024-05-01", domain.StatusCancelled, 0, "Inventory Shortage"),
		ord("O1002", "2024-05-01", domain.StatusCancelled, 0, "Payment Declined"),
		ord("O1003", "2024-05-01", domain.StatusCancelled, 0, "inventory shortage"),
		ord("O1004", "2024-05-01", domain.StatusDelivered, 300, ""),
		ord("O1005", "2024-05-01", domain.StatusDelivered, 401, ""),
		ord("O1006", "2024-05-01", domain.StatusCancelled, 0, ""),
		ord("O1007", "2024-05-01", domain.StatusPacked, 999, ""),
		ord("O1008", "2024-05-01", domain.StatusCancelled, 0, "Address invalid"),
	)
	docs := newMemDocs()
	r := NewReporter(discard(), s, docs)

	rep := r.Build()
	assert.Equal(t, 8, rep.TotalOrders)
	assert.Equal(t, 2, rep.DeliveredOrders)
	assert.Equal(t, 5, rep.CancelledOrders)
	assert.Equal(t, int64(701), rep.Revenue)
	assert.True(t, decimal.RequireFromString("350.50").Equal(rep.AverageOrder))
	assert.Equal(t, []ReasonCount{
		{Reason: "Inventory Shortage", Count: 2},
		{Reason: "Payment Declined", Count: 1},
		{Reason: "Unknown", Count: 1},
	}, rep.TopReasons(3))
	require.Len(t, rep.Reasons, 4)
	assert.Equal(t, ReasonCount{Reason: "Address invalid", Count: 1}, rep.Reasons[3])

	_, path, err := r.Write()
	require.NoError(t, err)
	assert.Equal(t, "data/report.txt", path)
	assert.Contains(t, docs.files[ReportFile], "1. Inventory Shortage - 2\n")
	assert.Contains(t, docs.files[ReportFile], "Average Order Value: BDT 350.50\n")
	assert.NotContains(t, docs.files[ReportFile], "Address invalid")
}

func TestReport_EmptyStore(t *testing.T) {
	out := Render(NewReporter(discard(), seeded(t), newMemDocs()).Build())
	assert.Contains(t, out, "Total Orders: 0\n")
	assert.Contains(t, out, "Average Order Value: BDT 0.00\n")
	assert.Contains(t, out, "(none)")
}

func TestStockReport(t *testing.T) {
	docs := newMemDocs()
	_, err := NewReporter(discard(), seeded(t), docs).WriteStockReport()
	require.NoError(t, err)
	assert.Equal(t, "ProductID | Name | Price | Stock\nP1 | A1 | 150 | 4\n", docs.files[StockReportFile])
}

func TestReceipts(t *testing.T) {
	delivered := ord("O1001", "2024-05-01", domain.StatusDelivered, 300, "")
	delivered.TrackingID = "TRK1001"
	s := seeded(t, delivered, ord("O1002", "2024-05-01", domain.StatusShipped, 300, ""))
	docs := newMemDocs()
	rc := NewReceipts(s, docs)

	text, err := rc.Render("1001")
	require.NoError(t, err)
	assert.Contains(t, text, "Receipt for Order O1001\n")
	assert.Contains(t, text, "Tracking ID: TRK1001\n")
	assert.Contains(t, text, "- A1 (x2 @ BDT 150 each)\n")
	assert.Contains(t, text, "Total Paid: BDT 300\n")

	path, err := rc.Write("o1001")
	require.NoError(t, err)
	assert.Equal(t, "data/receipt_O1001.txt", path)

	_, err = rc.Render("O1002")
	assert.ErrorIs(t, err, ErrNotDelivered)
	_, err = rc.Render("O9999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
