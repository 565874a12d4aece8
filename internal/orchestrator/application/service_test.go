package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	orchdomain "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

type memJournal struct {
	logs     map[string][]string
	invoices []string
	fail     error
}

func (j *memJournal) AppendOrderLog(orderID, message string) error {
	if j.fail != nil {
		return j.fail
	}
	if j.logs == nil {
		j.logs = map[string][]string{}
	}
	j.logs[orderID] = append(j.logs[orderID], message)
	return nil
}

func (j *memJournal) AppendInvoice(invoiceID string, total int64) error {
	if j.fail != nil {
		return j.fail
	}
	j.invoices = append(j.invoices, invoiceID)
	return nil
}

type memExporter struct {
	events []orchdomain.AuditEvent
}

func (x *memExporter) Export(_ context.Context, events []orchdomain.AuditEvent) error {
	x.events = append(x.events, events...)
	return nil
}

func newTestService(t *testing.T, products ...invdomain.Product) (*Service, *fixture, *memJournal) {
	f := newFixture(t, products...)
	j := &memJournal{}
	svc := NewService(discard(), f.engine, f.store, j)
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC) }
	return svc, f, j
}

func TestService_PlaceOrder(t *testing.T) {
	svc, f, j := newTestService(t, product("P1", 100, 10))
	x := &memExporter{}
	svc.WithExporter(x)

	out, err := svc.PlaceOrder(context.Background(),
		[]domain.OrderItem{{ProductID: "P1", Quantity: 2}}, "Road 1", "cod", nil)
	require.NoError(t, err)

	assert.Equal(t, "O1001", out.Order.ID)
	assert.Equal(t, "2024-05-17", out.Order.Date)
	assert.Equal(t, domain.StatusPacked, out.Order.Status)
	_, ok := f.store.Order("1001")
	assert.True(t, ok)
	assert.Equal(t, "Order created via admin interface (pending)", j.logs["O1001"][0])
	assert.Equal(t, []string{"INV-202405-1001"}, j.invoices)
	assert.Len(t, x.events, len(j.logs["O1001"]))
}

func TestService_PlaceOrderRejectsBadInput(t *testing.T) {
	svc, f, _ := newTestService(t, product("P1", 100, 10))
	ctx := context.Background()
	items := []domain.OrderItem{{ProductID: "P1", Quantity: 1}}

	_, err := svc.PlaceOrder(ctx, items, " ", "COD", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = svc.PlaceOrder(ctx, nil, "Road", "COD", nil)
	assert.ErrorIs(t, err, ErrNoItems)
	_, err = svc.PlaceOrder(ctx, []domain.OrderItem{{ProductID: "P1", Quantity: 0}}, "Road", "COD", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Empty(t, f.store.Orders())
}

func TestService_JournalFailureDoesNotChangeOutcome(t *testing.T) {
	svc, _, j := newTestService(t, product("P1", 100, 10))
	j.fail = errors.New("disk full")

	out, err := svc.PlaceOrder(context.Background(),
		[]domain.OrderItem{{ProductID: "P1", Quantity: 1}}, "Road", "COD", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPacked, out.Order.Status)
}

func TestService_AdvanceStatus(t *testing.T) {
	svc, _, j := newTestService(t, product("P1", 100, 10))
	ctx := context.Background()
	_, err := svc.PlaceOrder(ctx, []domain.OrderItem{{ProductID: "P1", Quantity: 1}}, "Road", "COD", nil)
	require.NoError(t, err)

	out, err := svc.AdvanceStatus(ctx, "1001", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, out.Order.Status)
	assert.Equal(t, "TRK1001", out.Order.TrackingID)
	assert.Contains(t, j.logs["O1001"], "Status changed to SHIPPED")

	_, err = svc.AdvanceStatus(ctx, "O9999", nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_ReorderAndRetry(t *testing.T) {
	svc, f, j := newTestService(t, product("P1", 100, 3))
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, []domain.OrderItem{{ProductID: "P1", Quantity: 5}}, "Road", "COD", nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, first.Order.Status)

	failed, err := svc.Retry(ctx, "O1001", nil)
	require.NoError(t, err)
	assert.Equal(t, "O1002", failed.Order.ID)
	assert.Equal(t, domain.StatusCancelled, failed.Order.Status)
	assert.NotContains(t, j.logs["O1002"], "Retry successful for O1001")

	p1, _ := f.store.Product("P1")
	p1.Stock = 10

	retried, err := svc.Retry(ctx, "O1001", nil)
	require.NoError(t, err)
	assert.Equal(t, "O1003", retried.Order.ID)
	assert.Equal(t, domain.StatusPacked, retried.Order.Status)
	assert.Equal(t, "Road", retried.Order.Address)
	assert.Equal(t, "Retry successful for O1001", retried.Events[len(retried.Events)-1].Message)
	assert.Contains(t, j.logs["O1003"], "Retry successful for O1001")

	_, err = svc.Retry(ctx, "O1003", nil)
	assert.ErrorIs(t, err, ErrNotCancelled)

	reordered, err := svc.Reorder(ctx, "O1003", nil)
	require.NoError(t, err)
	assert.Equal(t, "O1004", reordered.Order.ID)
	assert.Equal(t, domain.StatusPacked, reordered.Order.Status)
	assert.Equal(t, int64(0), p1.Stock)
	assert.Equal(t, []string{"Reordered from O1003"}, j.logs["O1004"][len(j.logs["O1004"])-1:])

	again, err := svc.Reorder(ctx, "O1003", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, again.Order.Status)
	assert.NotContains(t, j.logs["O1005"], "Reordered from O1003")
}

func TestService_ReorderDefaultsToCOD(t *testing.T) {
	svc, f, _ := newTestService(t, product("P1", 100, 10))
	src := domain.NewOrder("O1001", "2024-01-01")
	require.NoError(t, src.AddItem(domain.OrderItem{ProductID: "P1", Quantity: 1}))
	src.Address = "Road"
	require.NoError(t, f.store.AddOrder(src))

	out, err := svc.Reorder(context.Background(), "O1001", nil)
	require.NoError(t, err)
	assert.Equal(t, "COD", out.Order.PaymentMode)
	assert.Equal(t, domain.StatusPacked, out.Order.Status)
}

func TestService_Simulate(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		scenario int
		status   domain.OrderStatus
		reason   string
	}{
		{ScenarioSuccess, domain.StatusPacked, ""},
		{ScenarioPaymentFailure, domain.StatusCancelled, ReasonPaymentDeclined},
		{ScenarioShortage, domain.StatusCancelled, "Inventory Shortage: P2"},
		{ScenarioMixed, domain.StatusPacked, ""},
	}
	for _, tc := range cases {
		svc, _, j := newTestService(t, product("P1", 100, 50), product("P2", 200, 4))
		out, err := svc.Simulate(ctx, tc.scenario)
		require.NoError(t, err)
		assert.Equal(t, tc.status, out.Order.Status, "scenario %d", tc.scenario)
		assert.Equal(t, tc.reason, out.Order.CancelReason)
		assert.Equal(t, "SimulatedAddress", out.Order.Address)
		logs := j.logs[out.Order.ID]
		assert.Equal(t, "Simulation order with status: "+tc.status.String(), logs[len(logs)-1])
	}

	svc, _, _ := newTestService(t)
	_, err := svc.Simulate(ctx, ScenarioSuccess)
	assert.ErrorIs(t, err, ErrNoProducts)

	svc, _, _ = newTestService(t, product("P1", 100, 1))
	_, err = svc.Simulate(ctx, 7)
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestService_ImportOrders(t *testing.T) {
	svc, f, j := newTestService(t, product("P1", 100, 10))
	require.NoError(t, f.store.AddOrder(domain.NewOrder("O1001", "2024-01-01")))

	path := filepath.Join(t.TempDir(), "orders_import.json")
	content := `{"orderId":"O2000","date":"2024-05-01","address":"Road A","paymentMode":"COD","items":"P1x2, P2x1"}
{"orderId":"1001","date":"2024-05-02","address":"Road B","paymentMode":"MockCard","items":"P1x1"}
not json
{"orderId":"banana","address":"Road C","paymentMode":"COD","items":"P1x1"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res, err := svc.ImportOrders(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"O2000", "O2001", "O2002"}, res.Imported)
	assert.Equal(t, map[string]string{"1001": "O2001", "banana": "O2002"}, res.Renamed)
	assert.Equal(t, []int{3}, res.Skipped)

	o, ok := f.store.Order("O2000")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Zero(t, o.Total)
	assert.Len(t, o.Items, 2)

	banana, _ := f.store.Order("O2002")
	assert.Equal(t, "2024-05-17", banana.Date)
	assert.Equal(t, []string{"Order imported (pending)"}, j.logs["O2000"])

	_, err = svc.ImportOrders(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestService_ImportZeroPaddedIDIsTaken(t *testing.T) {
	svc, f, _ := newTestService(t, product("P1", 100, 10))
	require.NoError(t, f.store.AddOrder(domain.NewOrder("O1001", "2024-01-01")))

	path := filepath.Join(t.TempDir(), "orders_import.json")
	content := `{"orderId":"O01001","date":"2024-05-02","address":"Road B","paymentMode":"COD","items":"P1x1"}
{"orderId":"o01010","date":"2024-05-02","address":"Road C","paymentMode":"COD","items":"P1x1"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res, err := svc.ImportOrders(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"O01001": "O1002"}, res.Renamed)
	assert.Equal(t, []string{"O1002", "O1010"}, res.Imported)
	assert.Len(t, f.store.Orders(), 3)
	_, ok := f.store.Order("O01010")
	assert.True(t, ok)
}

func TestService_LoadTestData(t *testing.T) {
	svc, f, _ := newTestService(t, product("P1", 100, 10))
	ctx := context.Background()

	_, err := svc.LoadTestData(ctx, "seed.txt")
	assert.ErrorIs(t, err, ErrNoSeedReader)

	corrupt := &store.CorruptError{File: "seed.txt", Lines: []int{4}}
	svc.WithSeedReader(func(path string) (store.Snapshot, error) {
		return store.Snapshot{
			Products: []invdomain.Product{product("P7", 10, 1), product("P8", 10, 1)},
			Orders:   []domain.Order{{ID: "O1500", Date: "2024-05-01", Status: domain.StatusPending}},
			Admins:   []admindomain.Admin{{Username: "ops", Role: admindomain.RoleSupport}},
		}, corrupt
	})

	res, err := svc.LoadTestData(ctx, "seed.txt")
	assert.ErrorIs(t, err, corrupt)
	assert.Equal(t, LoadResult{Products: 2, Orders: 1, Admins: 1}, res)
	_, ok := f.store.Product("P1")
	assert.False(t, ok)
	assert.Equal(t, "O1501", f.store.NextOrderID())
}
