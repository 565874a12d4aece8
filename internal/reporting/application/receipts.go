package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

var (
	ErrNotDelivered  = errors.New("receipts are only issued for delivered orders")
	ErrOrderNotFound = errors.New("order not found")
)

type Receipts struct {
	records Records
	docs    Documents
}

func NewReceipts(records Records, docs Documents) *Receipts {
	return &Receipts{records: records, docs: docs}
}

// Render formats the receipt of a DELIVERED order using current product names and prices.
func (r *Receipts) Render(orderID string) (string, error) {
	o, ok := r.records.Order(orderID)
	if !ok {
		return "", fmt.Errorf("%s: %w", domain.NormalizeOrderID(orderID), ErrOrderNotFound)
	}
	if o.Status != domain.StatusDelivered {
		return "", fmt.Errorf("%s is %s: %w", o.ID, o.Status, ErrNotDelivered)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Receipt for Order %s\n", o.ID)
	address := o.Address
	if address == "" {
		address = "(Not Provided)"
	}
	fmt.Fprintf(&b, "Address: %s\n", address)
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	tracking := o.TrackingID
	if tracking == "" {
		tracking = "(Unavailable)"
	}
	fmt.Fprintf(&b, "Tracking ID: %s\n", tracking)
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		name, price := it.ProductID, int64(0)
		if p, ok := r.records.Product(it.ProductID); ok {
			name, price = p.Name, p.Price
		}
		fmt.Fprintf(&b, "- %s (x%d @ BDT %d each)\n", name, it.Quantity, price)
	}
	b.WriteString("--------------------------------------\n")
	fmt.Fprintf(&b, "Total Paid: BDT %d\n", o.Total)
	b.WriteString("Thank you for your purchase!\n")
	return b.String(), nil
}

// Write renders the receipt into receipt_<id>.txt and returns its path.
func (r *Receipts) Write(orderID string) (string, error) {
	text, err := r.Render(orderID)
	if err != nil {
		return "", err
	}
	o, _ := r.records.Order(orderID)
	return r.docs.WriteDocument("receipt_"+o.ID+".txt", text)
}
