package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

var ErrInvalidDays = errors.New("number of days must be positive")

type ArchiveResult struct {
	Archived []string
	Days     int
}

type Archiver struct {
	log     *slog.Logger
	records Records
	docs    Documents
}

func NewArchiver(log *slog.Logger, records Records, docs Documents) *Archiver {
	return &Archiver{log: log, records: records, docs: docs}
}

// Archive moves DELIVERED orders older than days out of the active set. Age
// uses the year*360 + month*30 + day approximation, so runs are repeatable.
func (a *Archiver) Archive(ctx context.Context, days int, today time.Time) (ArchiveResult, error) {
	if days <= 0 {
		return ArchiveResult{}, ErrInvalidDays
	}
	now := domain.DayCount(today.Format(time.DateOnly))
	age := func(o *domain.Order) int { return now - domain.DayCount(o.Date) }
	stale := func(o *domain.Order) bool {
		return o.Status == domain.StatusDelivered && age(o) > days
	}

	var batch []domain.Order
	for _, o := range a.records.Orders() {
		if stale(o) {
			c := *o
			c.Items = o.CopyItems()
			batch = append(batch, c)
		}
	}
	res := ArchiveResult{Days: days}
	if len(batch) == 0 {
		return res, nil
	}
	// The archive file is written first so a failure leaves the active set intact.
	if err := a.docs.AppendArchive(batch); err != nil {
		return res, fmt.Errorf("append archive: %w", err)
	}

	removed := a.records.RetainOrders(func(o *domain.Order) bool { return !stale(o) })
	for _, o := range removed {
		res.Archived = append(res.Archived, o.ID)
		if err := a.docs.AppendOrderLog(o.ID, fmt.Sprintf("Archived after delivery (age %d days)", age(o))); err != nil {
			a.log.Error("order log write failed", "order_id", o.ID, "err", err)
		}
	}
	if err := a.records.Save(ctx); err != nil {
		a.log.Error("save after archive failed", "err", err)
	}
	a.log.Info("orders archived", "count", len(res.Archived), "days", days)
	return res, nil
}
