package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

// Seed file tags. Each line is TAG|<record>; admin records carry a plaintext
// password that is hashed on load. Blank lines and lines starting with # are ignored.
const (
	seedProduct = "PRODUCT"
	seedOrder   = "ORDER"
	seedAdmin   = "ADMIN"
)

// ReadSeed parses a test-data file into a snapshot. Unreadable lines are
// skipped and reported as a *store.CorruptError alongside the snapshot.
func ReadSeed(path string) (store.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	var snap store.Snapshot
	var bad []int
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tag, rest, _ := strings.Cut(line, sep)
		switch strings.ToUpper(strings.TrimSpace(tag)) {
		case seedProduct:
			p, err := DecodeProduct(rest)
			if err != nil {
				bad = append(bad, n)
				continue
			}
			snap.Products = append(snap.Products, p)
		case seedOrder:
			o, err := DecodeOrder(rest)
			if err != nil {
				bad = append(bad, n)
				continue
			}
			snap.Orders = append(snap.Orders, o)
		case seedAdmin:
			parts := split(rest)
			if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
				bad = append(bad, n)
				continue
			}
			role := admindomain.RoleAdmin
			if r := field(parts, 2); r != "" {
				if role, err = admindomain.ParseRole(r); err != nil {
					bad = append(bad, n)
					continue
				}
			}
			snap.Admins = append(snap.Admins, admindomain.Admin{
				Username:     parts[0],
				PasswordHash: admindomain.HashPassword(parts[1]),
				Role:         role,
			})
		default:
			bad = append(bad, n)
		}
	}
	if err := sc.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("read seed: %w", err)
	}
	if len(bad) > 0 {
		return snap, &store.CorruptError{File: path, Lines: bad}
	}
	return snap, nil
}
