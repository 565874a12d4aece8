package flatfile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRepository_MissingFilesLoadEmpty(t *testing.T) {
	repo := NewRepository(discard(), t.TempDir())

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Admins)
	assert.Zero(t, snap.HighWater)
}

func TestRepository_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewRepository(discard(), filepath.Join(dir, "nested"))

	in := store.Snapshot{
		Products: []invdomain.Product{
			{ID: "P1", Category: "Phone", Brand: "Acme", Name: "A1", Price: 1200, Stock: 4},
		},
		Orders: []domain.Order{
			{
				ID: "O1001", Date: "2024-05-01", Address: "Road 1", PaymentMode: "COD",
				Status: domain.StatusCancelled, Items: []domain.OrderItem{{ProductID: "P1", Quantity: 2}},
				CancelReason: "Payment Declined",
			},
			{
				ID: "O1002", Date: "2024-05-02", Address: "Road 2", PaymentMode: "MockCard",
				Status: domain.StatusShipped, Items: []domain.OrderItem{{ProductID: "P1", Quantity: 1}},
				Total: 1200, TrackingID: "TRK1002",
			},
		},
		Admins: []admindomain.Admin{admindomain.DefaultAdmin()},
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.Products, out.Products)
	require.Len(t, out.Orders, 2)
	assert.Equal(t, in.Orders[0].CancelReason, out.Orders[0].CancelReason)
	assert.Equal(t, in.Orders[0].Items, out.Orders[0].Items)
	assert.Equal(t, domain.StatusShipped, out.Orders[1].Status)
	assert.Equal(t, int64(1200), out.Orders[1].Total)
	assert.Equal(t, "TRK1002", out.Orders[1].TrackingID)
	assert.Equal(t, in.Admins, out.Admins)

	_, err = os.Stat(repo.Path(ProductsFile + ".tmp"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file must be renamed away")
}

func TestRepository_SanitizesDelimiters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(discard(), t.TempDir())

	o := domain.Order{
		ID: "O1001", Date: "2024-05-01", Address: "Flat 3|B\nDhaka", PaymentMode: "COD",
		Status: domain.StatusPending,
	}
	require.NoError(t, repo.Save(ctx, store.Snapshot{Orders: []domain.Order{o}}))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Orders, 1)
	assert.Equal(t, "Flat 3/B Dhaka", out.Orders[0].Address)
}

func TestRepository_CorruptLinesAreReportedAndSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProductsFile, "P1|Phone|Acme|A1|1,200|4\nbroken line\nP2|Phone|Acme|A2|abc|1\n")
	writeFile(t, dir, OrdersFile, "O1001|2024-05-01|Road|COD|PENDING|0|P1x1||\nO1002|2024-05-01|Road|COD|LOST|0|||\n")
	writeFile(t, dir, AdminsFile, "root|abcdef\n")

	snap, err := NewRepository(discard(), dir).Load(context.Background())
	require.Error(t, err)

	var corrupt *store.CorruptError
	require.True(t, errors.As(err, &corrupt))
	assert.Contains(t, err.Error(), ProductsFile)
	assert.Contains(t, err.Error(), OrdersFile)

	require.Len(t, snap.Products, 1)
	assert.Equal(t, int64(1200), snap.Products[0].Price)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, "O1001", snap.Orders[0].ID)
	require.Len(t, snap.Admins, 1)
	assert.Equal(t, admindomain.RoleAdmin, snap.Admins[0].Role)
}

func TestRepository_HighWaterIncludesArchive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OrdersFile, "O1001|2024-05-01|Road|COD|PENDING|0|||\n")
	writeFile(t, dir, ArchiveFile, "O1007|2023-01-01|Road|COD|DELIVERED|10|P1x1||TRK1007\n")

	snap, err := NewRepository(discard(), dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1007, snap.HighWater)
}

func TestDecodeOrder_IgnoresReasonUnlessCancelled(t *testing.T) {
	o, err := DecodeOrder("O1001|2024-05-01|Road|COD|PACKED|300|P1x3|stale reason|")
	require.NoError(t, err)
	assert.Empty(t, o.CancelReason)
	assert.Equal(t, domain.StatusPacked, o.Status)
}

func TestDecodeAdmin_RejectsUnknownRole(t *testing.T) {
	_, err := DecodeAdmin("bob|hash|JANITOR")
	assert.ErrorIs(t, err, admindomain.ErrUnknownRole)
}
