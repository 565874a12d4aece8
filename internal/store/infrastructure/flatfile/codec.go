package flatfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
)

const sep = "|"

var fieldCleaner = strings.NewReplacer(sep, "/", "\r", " ", "\n", " ")

// clean keeps free text from breaking the one-record-per-line format.
func clean(s string) string {
	return fieldCleaner.Replace(s)
}

func join(fields ...string) string {
	for i, f := range fields {
		fields[i] = clean(f)
	}
	return strings.Join(fields, sep)
}

func split(line string) []string {
	parts := strings.Split(line, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func parseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative amount")
	}
	return n, nil
}

// EncodeProduct renders id|category|brand|name|price|stock.
func EncodeProduct(p invdomain.Product) string {
	return join(p.ID, p.Category, p.Brand, p.Name, strconv.FormatInt(p.Price, 10), strconv.FormatInt(p.Stock, 10))
}

func DecodeProduct(line string) (invdomain.Product, error) {
	parts := split(line)
	if len(parts) < 6 {
		return invdomain.Product{}, fmt.Errorf("product record has %d fields, want 6", len(parts))
	}
	price, err := parseAmount(parts[4])
	if err != nil {
		return invdomain.Product{}, fmt.Errorf("product price: %w", err)
	}
	stock, err := parseAmount(parts[5])
	if err != nil {
		return invdomain.Product{}, fmt.Errorf("product stock: %w", err)
	}
	if parts[0] == "" {
		return invdomain.Product{}, errors.New("product id is empty")
	}
	return invdomain.Product{
		ID:       parts[0],
		Category: parts[1],
		Brand:    parts[2],
		Name:     parts[3],
		Price:    price,
		Stock:    stock,
	}, nil
}

// EncodeOrder renders id|date|address|paymentMode|status|total|items|cancelReason|trackingId.
func EncodeOrder(o domain.Order) string {
	return join(
		o.ID,
		o.Date,
		o.Address,
		o.PaymentMode,
		string(o.Status),
		strconv.FormatInt(o.Total, 10),
		domain.FormatItems(o.Items),
		o.CancelReason,
		o.TrackingID,
	)
}

func DecodeOrder(line string) (domain.Order, error) {
	parts := split(line)
	if len(parts) < 5 {
		return domain.Order{}, fmt.Errorf("order record has %d fields, want at least 5", len(parts))
	}
	if parts[0] == "" {
		return domain.Order{}, errors.New("order id is empty")
	}
	status, err := domain.ParseStatus(parts[4])
	if err != nil {
		return domain.Order{}, err
	}
	total, err := parseAmount(field(parts, 5))
	if err != nil {
		return domain.Order{}, fmt.Errorf("order total: %w", err)
	}
	o := domain.NewOrder(parts[0], parts[1])
	o.Address = parts[2]
	o.PaymentMode = parts[3]
	o.Status = status
	o.Total = total
	for _, it := range domain.ParseItems(field(parts, 6)) {
		if err := o.AddItem(it); err != nil {
			return domain.Order{}, fmt.Errorf("order items: %w", err)
		}
	}
	if status == domain.StatusCancelled {
		o.CancelReason = field(parts, 7)
	}
	o.TrackingID = field(parts, 8)
	return *o, nil
}

// EncodeAdmin renders username|passwordHashHex|role.
func EncodeAdmin(a admindomain.Admin) string {
	return join(a.Username, a.PasswordHash, string(a.Role))
}

// DecodeAdmin accepts the legacy two-field form, which defaults to ADMIN.
func DecodeAdmin(line string) (admindomain.Admin, error) {
	parts := split(line)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return admindomain.Admin{}, errors.New("admin record needs username and hash")
	}
	role := admindomain.RoleAdmin
	if r := field(parts, 2); r != "" {
		parsed, err := admindomain.ParseRole(r)
		if err != nil {
			return admindomain.Admin{}, err
		}
		role = parsed
	}
	return admindomain.Admin{Username: parts[0], PasswordHash: parts[1], Role: role}, nil
}
