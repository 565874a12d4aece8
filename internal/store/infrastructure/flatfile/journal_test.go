package flatfile

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

func TestJournal_OrderLogs(t *testing.T) {
	repo := NewRepository(discard(), t.TempDir())
	j := NewJournal(repo)

	require.NoError(t, j.AppendOrderLog("O1001", "Inventory OK - stock reserved"))
	require.NoError(t, j.AppendOrderLog("O1002", "Order cancelled - Payment Declined"))
	require.NoError(t, j.AppendOrderLog("O1001", "Status changed to PACKED"))
	require.NoError(t, j.AppendOrderLog("O10011", "unrelated"))

	logs, err := j.OrderLogs("1001")
	require.NoError(t, err)
	assert.Equal(t, []string{"Inventory OK - stock reserved", "Status changed to PACKED"}, logs)

	require.NoError(t, j.ClearOrderLogs())
	logs, err = j.OrderLogs("O1001")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestJournal_AuditAndInvoices(t *testing.T) {
	repo := NewRepository(discard(), t.TempDir())
	j := NewJournal(repo)
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, j.AppendAudit("place_order", "admin", at))
	require.NoError(t, j.AppendInvoice("INV-202405-1001", 2400))

	audit, err := repo.ReadLines(AuditFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"place_order|admin|2024-05-01T10:30:00Z"}, audit)

	invoices, err := repo.ReadLines(InvoicesFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-202405-1001|BDT 2400"}, invoices)
}

func TestJournal_ArchiveAndDocuments(t *testing.T) {
	repo := NewRepository(discard(), t.TempDir())
	j := NewJournal(repo)

	require.NoError(t, j.AppendArchive(nil))
	require.NoError(t, j.AppendArchive([]domain.Order{{ID: "O1001", Date: "2024-01-01", Status: domain.StatusDelivered}}))
	lines, err := repo.ReadLines(ArchiveFile)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "O1001|2024-01-01|"))

	path, err := j.WriteDocument(ReportFile, "line one\nline two\n")
	require.NoError(t, err)
	assert.Equal(t, repo.Path(ReportFile), path)

	got, err := j.ReadDocument(ReportFile)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got)
}
