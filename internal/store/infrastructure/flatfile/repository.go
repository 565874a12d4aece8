package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

const (
	ProductsFile = "products.txt"
	OrdersFile   = "orders.txt"
	AdminsFile   = "admins.txt"
	ArchiveFile  = "archive_orders.txt"
)

// Repository persists the record store as pipe-delimited text files under dir.
type Repository struct {
	log *slog.Logger
	dir string
}

func NewRepository(log *slog.Logger, dir string) *Repository {
	return &Repository{log: log, dir: dir}
}

func (r *Repository) Dir() string { return r.dir }

// Path resolves a data file name inside the repository directory.
func (r *Repository) Path(name string) string {
	if r.dir == "" {
		return name
	}
	return filepath.Join(r.dir, name)
}

// Load reads all three collections. Missing files load as empty. Unparseable
// lines are skipped and reported through a joined *store.CorruptError.
func (r *Repository) Load(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot
	var errs []error

	err := r.readRecords(ProductsFile, &errs, func(line string) error {
		p, err := DecodeProduct(line)
		if err == nil {
			snap.Products = append(snap.Products, p)
		}
		return err
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	err = r.readRecords(OrdersFile, &errs, func(line string) error {
		o, err := DecodeOrder(line)
		if err == nil {
			snap.Orders = append(snap.Orders, o)
		}
		return err
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	err = r.readRecords(AdminsFile, &errs, func(line string) error {
		a, err := DecodeAdmin(line)
		if err == nil {
			snap.Admins = append(snap.Admins, a)
		}
		return err
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	// Archived ids stay reserved so reloads never reissue them.
	err = r.readRecords(ArchiveFile, nil, func(line string) error {
		if n := domain.OrderNumber(field(split(line), 0)); n > snap.HighWater {
			snap.HighWater = n
		}
		return nil
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	return snap, errors.Join(errs...)
}

// Save overwrites all three files.
func (r *Repository) Save(ctx context.Context, snap store.Snapshot) error {
	products := make([]string, 0, len(snap.Products))
	for _, p := range snap.Products {
		products = append(products, EncodeProduct(p))
	}
	orders := make([]string, 0, len(snap.Orders))
	for _, o := range snap.Orders {
		orders = append(orders, EncodeOrder(o))
	}
	admins := make([]string, 0, len(snap.Admins))
	for _, a := range snap.Admins {
		admins = append(admins, EncodeAdmin(a))
	}

	return errors.Join(
		r.WriteFile(ProductsFile, products),
		r.WriteFile(OrdersFile, orders),
		r.WriteFile(AdminsFile, admins),
	)
}

// WriteFile replaces name with lines via a temp file and rename.
func (r *Repository) WriteFile(name string, lines []string) error {
	path := r.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// AppendLines appends to name, creating it if needed.
func (r *Repository) AppendLines(name string, lines ...string) error {
	path := r.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		_, _ = w.WriteString(l)
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", name, err)
	}
	return f.Close()
}

// ReadLines returns the non-blank lines of name; a missing file yields none.
func (r *Repository) ReadLines(name string) ([]string, error) {
	var out []string
	err := r.scan(name, func(_ int, line string) {
		out = append(out, line)
	})
	return out, err
}

func (r *Repository) readRecords(name string, errs *[]error, decode func(string) error) error {
	var bad []int
	err := r.scan(name, func(n int, line string) {
		if derr := decode(line); derr != nil {
			r.log.Warn("corrupt record skipped", "file", name, "line", n, "err", derr)
			bad = append(bad, n)
		}
	})
	if err != nil {
		return err
	}
	if len(bad) > 0 && errs != nil {
		*errs = append(*errs, &store.CorruptError{File: name, Lines: bad})
	}
	return nil
}

func (r *Repository) scan(name string, fn func(lineNo int, line string)) error {
	f, err := os.Open(r.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fn(n, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

var _ store.Persister = (*Repository)(nil)
