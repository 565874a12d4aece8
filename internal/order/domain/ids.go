package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	orderPrefix = "O"
	// FirstOrderNumber is the numeric part of the first generated order id.
	FirstOrderNumber = 1001
)

func FormatOrderID(n int) string {
	return orderPrefix + strconv.Itoa(n)
}

// NormalizeOrderID maps operator input such as "1001", "01001", "o1001" or
// "O01001" to "O1001". Prefixed ids with a non-numeric tail are only upper-cased.
func NormalizeOrderID(in string) string {
	id := strings.ToUpper(strings.TrimSpace(in))
	if id == "" {
		return id
	}
	digits, prefixed := strings.CutPrefix(id, orderPrefix)
	if prefixed && (digits == "" || strings.Trim(digits, "0123456789") != "") {
		return id
	}
	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" {
		stripped = "0"
	}
	return orderPrefix + stripped
}

// Suffix returns the digits of an order id ("O1005" -> "1005").
func Suffix(orderID string) string {
	var b strings.Builder
	for _, r := range orderID {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OrderNumber is the numeric suffix of an id, or 0 when it has none.
func OrderNumber(orderID string) int {
	n, err := strconv.Atoi(Suffix(orderID))
	if err != nil {
		return 0
	}
	return n
}

func TrackingID(orderID string) string {
	return "TRK" + Suffix(orderID)
}

// InvoiceID derives INV-<YYYYMM>-<suffix> from the order date and id.
func InvoiceID(o *Order) string {
	ym := o.Date
	if len(ym) >= 7 {
		ym = ym[:7]
	}
	ym = strings.ReplaceAll(ym, "-", "")
	return fmt.Sprintf("INV-%s-%s", ym, Suffix(o.ID))
}

// DayCount approximates a YYYY-MM-DD date as year*360 + month*30 + day.
// Calendar-agnostic on purpose; archive ages depend on this exact formula.
func DayCount(date string) int {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) < 3 {
		return 0
	}
	y, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	d, _ := strconv.Atoi(strings.TrimSpace(parts[2]))
	return y*360 + m*30 + d
}

// FormatItems renders items as "P1x2,P2x1".
func FormatItems(items []OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%sx%d", it.ProductID, it.Quantity))
	}
	return strings.Join(parts, ",")
}

// ParseItems reads "P1x2, P2 x 1". Tokens without a positive quantity are skipped,
// the same way AddItem would reject them.
func ParseItems(s string) []OrderItem {
	var out []OrderItem
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		idx := strings.LastIndexAny(tok, "xX")
		if idx <= 0 {
			continue
		}
		pid := strings.TrimSpace(tok[:idx])
		qty, err := strconv.Atoi(strings.TrimSpace(tok[idx+1:]))
		if err != nil || qty <= 0 || pid == "" {
			continue
		}
		out = append(out, OrderItem{ProductID: pid, Quantity: qty})
	}
	return out
}
