// Package console is the operator-facing menu. It owns stdin and stdout; all
// diagnostics go to the structured logger instead.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	adminapp "github.com/dmehra2102/order-fulfillment-console/internal/admin/application"
	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invapp "github.com/dmehra2102/order-fulfillment-console/internal/inventory/application"
	orchapp "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/application"
	reportapp "github.com/dmehra2102/order-fulfillment-console/internal/reporting/application"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
	"github.com/dmehra2102/order-fulfillment-console/internal/store/infrastructure/flatfile"
)

var errQuit = errors.New("quit")

// Deps wires the console to the application layer.
type Deps struct {
	Store       *store.Store
	Ledger      *invapp.Ledger
	Fulfillment *orchapp.Service
	Admins      *adminapp.Service
	Archiver    *reportapp.Archiver
	Reporter    *reportapp.Reporter
	Receipts    *reportapp.Receipts
	Journal     *flatfile.Journal
	// ImportPath is offered as the default bulk import file.
	ImportPath string
	// LowStockThreshold flags products with fewer units; zero means the ledger default.
	LowStockThreshold int64
}

type Console struct {
	log *slog.Logger
	in  *bufio.Reader
	out io.Writer
	d   Deps
	now func() time.Time

	user *admindomain.Admin
}

func New(log *slog.Logger, in io.Reader, out io.Writer, d Deps) *Console {
	if d.LowStockThreshold <= 0 {
		d.LowStockThreshold = invapp.DefaultLowStockThreshold
	}
	return &Console{log: log, in: bufio.NewReader(in), out: out, d: d, now: time.Now}
}

type menuItem struct {
	key    string
	label  string
	action admindomain.Action
	run    func(c *Console, ctx context.Context) error
}

var menu = []menuItem{
	{"1", "Accept New Order", admindomain.ActionPlaceOrder, (*Console).placeOrder},
	{"2", "Update Order Status", admindomain.ActionAdvanceStatus, (*Console).advanceStatus},
	{"3", "View Order Logs", admindomain.ActionViewLogs, (*Console).viewLogs},
	{"4", "Search / Filter Orders", admindomain.ActionSearchOrders, (*Console).searchOrders},
	{"5", "Generate Receipt", admindomain.ActionReceipt, (*Console).receipt},
	{"6", "Filter Products", admindomain.ActionFilterProducts, (*Console).filterProducts},
	{"7", "Manage Products", admindomain.ActionManageProducts, (*Console).manageProducts},
	{"8", "Low Stock Alert", admindomain.ActionLowStock, (*Console).lowStock},
	{"9", "Restock Product", admindomain.ActionRestock, (*Console).restock},
	{"10", "Export Stock Report", admindomain.ActionStockReport, (*Console).stockReport},
	{"11", "Bulk Import Orders", admindomain.ActionBulkImport, (*Console).bulkImport},
	{"12", "Archive Delivered Orders", admindomain.ActionArchive, (*Console).archive},
	{"13", "Reorder Previous Order", admindomain.ActionReorder, (*Console).reorder},
	{"14", "Retry Failed Order", admindomain.ActionRetry, (*Console).retry},
	{"15", "Clear Order Logs", admindomain.ActionClearLogs, (*Console).clearLogs},
	{"16", "Add Admin", admindomain.ActionAddAdmin, (*Console).addAdmin},
	{"17", "Change Password", admindomain.ActionChangePassword, (*Console).changePassword},
	{"18", "Generate Report", admindomain.ActionReport, (*Console).report},
	{"19", "Simulation Mode", admindomain.ActionSimulate, (*Console).simulate},
	{"20", "Load Test Data", admindomain.ActionLoadTestData, (*Console).loadTestData},
}

// Run logs an operator in and serves the menu until exit, end of input or ctx
// cancellation. The store is saved on the way out.
func (c *Console) Run(ctx context.Context) error {
	c.println("E-commerce Order Fulfillment Console")
	if err := c.login(); err != nil {
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	}
	defer c.save(ctx)

	for {
		if ctx.Err() != nil {
			c.println("Shutting down...")
			return nil
		}
		c.showMenu()
		choice, err := c.prompt("Choose an option: ")
		if err != nil {
			return nil
		}
		if choice == "0" {
			c.println("Exiting Admin Dashboard...")
			return nil
		}
		item, ok := lookup(choice)
		if !ok {
			c.println("Invalid option. Please try again.")
			continue
		}
		if !admindomain.Allows(c.user.Role, item.action) {
			c.printf("Permission denied: %s requires a different role.\n", item.label)
			continue
		}
		if err := item.run(c, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.printf("Error: %v\n", err)
		}
		c.audit(item.action)
	}
}

func lookup(choice string) (menuItem, bool) {
	for _, m := range menu {
		if m.key == choice {
			return m, true
		}
	}
	return menuItem{}, false
}

func (c *Console) login() error {
	for attempt := 1; attempt <= adminapp.MaxLoginAttempts; attempt++ {
		username, err := c.prompt("Username: ")
		if err != nil {
			return errQuit
		}
		password, err := c.prompt("Password: ")
		if err != nil {
			return errQuit
		}
		a, err := c.d.Admins.Authenticate(username, password)
		if err == nil {
			c.user = a
			c.printf("Welcome, %s (%s)\n", a.Username, a.Role)
			c.audit("login")
			return nil
		}
		c.printf("Invalid credentials (%d/%d).\n", attempt, adminapp.MaxLoginAttempts)
	}
	c.println("Too many failed attempts. Exiting.")
	return errQuit
}

func (c *Console) showMenu() {
	c.println("----------------------------------------")
	for _, m := range menu {
		if admindomain.Allows(c.user.Role, m.action) {
			c.printf("%2s. %s\n", m.key, m.label)
		} else {
			c.printf("%2s. %s (restricted)\n", m.key, m.label)
		}
	}
	c.println(" 0. Exit")
}

func (c *Console) audit(action admindomain.Action) {
	if err := c.d.Journal.AppendAudit(string(action), c.user.Username, c.now().UTC()); err != nil {
		c.log.Error("audit write failed", "action", action, "err", err)
	}
}

func (c *Console) save(ctx context.Context) {
	// The root context may already be cancelled by a signal; saving must still happen.
	if err := c.d.Store.Save(context.WithoutCancel(ctx)); err != nil {
		c.log.Error("final save failed", "err", err)
		c.printf("Error: could not save data: %v\n", err)
	}
}

// prompt prints label and returns the trimmed reply. End of input yields io.EOF.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}

// promptRequired is prompt that rejects blank input.
func (c *Console) promptRequired(label, what string) (string, bool, error) {
	v, err := c.prompt(label)
	if err != nil {
		return "", false, err
	}
	if v == "" {
		c.printf("%s cannot be empty.\n", what)
		return "", false, nil
	}
	return v, true, nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
