package flatfile

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

const (
	LogsFile        = "logs.txt"
	AuditFile       = "audit.txt"
	InvoicesFile    = "invoices.txt"
	ReportFile      = "report.txt"
	StockReportFile = "stock_report.txt"
)

// Journal holds the append-only text files next to the record store.
type Journal struct {
	repo *Repository
}

func NewJournal(repo *Repository) *Journal {
	return &Journal{repo: repo}
}

// AppendOrderLog writes one "Order <id> - <message>" line.
func (j *Journal) AppendOrderLog(orderID, message string) error {
	return j.repo.AppendLines(LogsFile, fmt.Sprintf("Order %s - %s", clean(orderID), clean(message)))
}

// OrderLogs returns the messages logged for orderID in write order.
func (j *Journal) OrderLogs(orderID string) ([]string, error) {
	lines, err := j.repo.ReadLines(LogsFile)
	if err != nil {
		return nil, err
	}
	prefix := "Order " + domain.NormalizeOrderID(orderID) + " - "
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(strings.ToUpper(l), strings.ToUpper(prefix)) {
			out = append(out, l[len(prefix):])
		}
	}
	return out, nil
}

// ClearOrderLogs truncates logs.txt.
func (j *Journal) ClearOrderLogs() error {
	return j.repo.WriteFile(LogsFile, nil)
}

// AppendAudit records an operator action as action|username|timestamp.
func (j *Journal) AppendAudit(action, username string, at time.Time) error {
	return j.repo.AppendLines(AuditFile, join(action, username, at.Format(time.RFC3339)))
}

func (j *Journal) AppendInvoice(invoiceID string, total int64) error {
	return j.repo.AppendLines(InvoicesFile, join(invoiceID, fmt.Sprintf("BDT %d", total)))
}

// AppendArchive appends orders to archive_orders.txt in the orders.txt format.
func (j *Journal) AppendArchive(orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, EncodeOrder(o))
	}
	return j.repo.AppendLines(ArchiveFile, lines...)
}

// WriteDocument replaces name with free-form text such as a report or receipt.
func (j *Journal) WriteDocument(name, content string) (string, error) {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if err := j.repo.WriteFile(name, lines); err != nil {
		return "", err
	}
	return j.repo.Path(name), nil
}

// ReadDocument returns a file written earlier, or os.ErrNotExist.
func (j *Journal) ReadDocument(name string) (string, error) {
	b, err := os.ReadFile(j.repo.Path(name))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
