package application

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
)

type memRepo struct {
	items []*domain.Product
}

func (m *memRepo) Product(id string) (*domain.Product, bool) {
	for _, p := range m.items {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (m *memRepo) Products() []*domain.Product { return m.items }

func newTestLedger(products ...domain.Product) (*Ledger, *memRepo) {
	repo := &memRepo{}
	for i := range products {
		p := products[i]
		repo.items = append(repo.items, &p)
	}
	return NewLedger(slog.New(slog.NewTextHandler(io.Discard, nil)), repo), repo
}

func TestLedger_ReserveReleaseAreInverses(t *testing.T) {
	l, repo := newTestLedger(domain.Product{ID: "P1", Stock: 10})

	require.NoError(t, l.Reserve("P1", 4))
	assert.Equal(t, int64(6), repo.items[0].Stock)

	require.NoError(t, l.Release("P1", 4))
	assert.Equal(t, int64(10), repo.items[0].Stock)
}

func TestLedger_ReserveNeverGoesNegative(t *testing.T) {
	l, repo := newTestLedger(domain.Product{ID: "P1", Stock: 3})

	err := l.Reserve("P1", 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), repo.items[0].Stock)

	require.NoError(t, l.Reserve("P1", 3))
	assert.Equal(t, int64(0), repo.items[0].Stock)
	assert.ErrorIs(t, l.Reserve("P1", 1), domain.ErrInsufficientStock)
}

func TestLedger_UnknownProduct(t *testing.T) {
	l, _ := newTestLedger()

	assert.False(t, l.CheckAvailable("X", 1))
	assert.ErrorIs(t, l.Reserve("X", 1), domain.ErrUnknownProduct)
	assert.ErrorIs(t, l.Release("X", 1), domain.ErrUnknownProduct)
	_, err := l.Restock("X", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestLedger_CheckAvailable(t *testing.T) {
	l, _ := newTestLedger(domain.Product{ID: "P1", Stock: 3})

	assert.True(t, l.CheckAvailable("P1", 3))
	assert.False(t, l.CheckAvailable("P1", 4))
	assert.False(t, l.CheckAvailable("P1", 0))
}

func TestLedger_Restock(t *testing.T) {
	l, _ := newTestLedger(domain.Product{ID: "P1", Stock: 3})

	stock, err := l.Restock("P1", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)

	_, err = l.Restock("P1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestLedger_LowStock(t *testing.T) {
	l, _ := newTestLedger(
		domain.Product{ID: "P1", Stock: 4},
		domain.Product{ID: "P2", Stock: 5},
		domain.Product{ID: "P3", Stock: 0},
	)

	low := l.LowStock(DefaultLowStockThreshold)
	require.Len(t, low, 2)
	assert.Equal(t, "P1", low[0].ID)
	assert.Equal(t, "P3", low[1].ID)
}
