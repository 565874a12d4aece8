package application

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

const (
	ReportFile      = "report.txt"
	StockReportFile = "stock_report.txt"

	topReasons    = 3
	unknownReason = "Unknown"
)

type ReasonCount struct {
	Reason string
	Count  int
}

type Report struct {
	TotalOrders     int
	DeliveredOrders int
	CancelledOrders int
	Revenue         int64
	AverageOrder    decimal.Decimal
	// Reasons is ranked by count, ties in order of first appearance.
	Reasons []ReasonCount
}

// TopReasons returns at most n leading reasons.
func (r Report) TopReasons(n int) []ReasonCount {
	if len(r.Reasons) < n {
		return r.Reasons
	}
	return r.Reasons[:n]
}

type Reporter struct {
	log     *slog.Logger
	records Records
	docs    Documents
}

func NewReporter(log *slog.Logger, records Records, docs Documents) *Reporter {
	return &Reporter{log: log, records: records, docs: docs}
}

func (r *Reporter) Build() Report {
	var rep Report
	index := map[string]int{}
	for _, o := range r.records.Orders() {
		rep.TotalOrders++
		switch o.Status {
		case domain.StatusDelivered:
			rep.DeliveredOrders++
			rep.Revenue += o.Total
		case domain.StatusCancelled:
			rep.CancelledOrders++
			reason := strings.TrimSpace(o.CancelReason)
			if reason == "" {
				reason = unknownReason
			}
			key := strings.ToLower(reason)
			if i, ok := index[key]; ok {
				rep.Reasons[i].Count++
				continue
			}
			index[key] = len(rep.Reasons)
			rep.Reasons = append(rep.Reasons, ReasonCount{Reason: reason, Count: 1})
		}
	}
	sort.SliceStable(rep.Reasons, func(i, j int) bool {
		return rep.Reasons[i].Count > rep.Reasons[j].Count
	})
	if rep.DeliveredOrders > 0 {
		rep.AverageOrder = decimal.NewFromInt(rep.Revenue).
			Div(decimal.NewFromInt(int64(rep.DeliveredOrders))).
			Round(2)
	}
	return rep
}

func Render(rep Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Orders: %d\n", rep.TotalOrders)
	fmt.Fprintf(&b, "Completed Orders: %d\n", rep.DeliveredOrders)
	fmt.Fprintf(&b, "Cancelled Orders: %d\n", rep.CancelledOrders)
	fmt.Fprintf(&b, "Total Revenue: BDT %d\n", rep.Revenue)
	fmt.Fprintf(&b, "Average Order Value: BDT %s\n", rep.AverageOrder.StringFixed(2))
	b.WriteString("Top 3 Cancellation Reasons:\n")
	top := rep.TopReasons(topReasons)
	if len(top) == 0 {
		b.WriteString("(none)\n")
	}
	for i, rc := range top {
		fmt.Fprintf(&b, "%d. %s - %d\n", i+1, rc.Reason, rc.Count)
	}
	return b.String()
}

// Write builds the report and stores it in report.txt.
func (r *Reporter) Write() (Report, string, error) {
	rep := r.Build()
	path, err := r.docs.WriteDocument(ReportFile, Render(rep))
	if err != nil {
		return rep, "", fmt.Errorf("write report: %w", err)
	}
	r.log.Info("report written", "path", path, "orders", rep.TotalOrders)
	return rep, path, nil
}

// WriteStockReport stores one "ProductID | Name | Price | Stock" line per product.
func (r *Reporter) WriteStockReport() (string, error) {
	var b strings.Builder
	b.WriteString("ProductID | Name | Price | Stock\n")
	for _, p := range r.records.Products() {
		fmt.Fprintf(&b, "%s | %s | %d | %d\n", p.ID, p.Name, p.Price, p.Stock)
	}
	path, err := r.docs.WriteDocument(StockReportFile, b.String())
	if err != nil {
		return "", fmt.Errorf("write stock report: %w", err)
	}
	return path, nil
}
