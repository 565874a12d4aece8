package console

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	orchdomain "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	paydomain "github.com/dmehra2102/order-fulfillment-console/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

func (c *Console) placeOrder(ctx context.Context) error {
	raw, err := c.prompt(fmt.Sprintf("Number of products (1-%d): ", domain.MaxItems))
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > domain.MaxItems {
		c.println("Invalid number of products. Order cancelled.")
		return nil
	}

	items := make([]domain.OrderItem, 0, n)
	for i := 1; i <= n; i++ {
		pid, ok, err := c.promptRequired(fmt.Sprintf("Product %d ID: ", i), "Product ID")
		if err != nil || !ok {
			return err
		}
		p, found := c.d.Store.Product(pid)
		if !found {
			c.printf("Product %s not found. Order cancelled.\n", pid)
			return nil
		}
		raw, err := c.prompt(fmt.Sprintf("Quantity of %s (stock %d): ", p.Name, p.Stock))
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			c.println("Invalid quantity. Order cancelled.")
			return nil
		}
		items = append(items, domain.OrderItem{ProductID: p.ID, Quantity: qty})
	}

	address, ok, err := c.promptRequired("Delivery address: ", "Address")
	if err != nil || !ok {
		return err
	}
	mode, ok, err := c.promptRequired("Payment mode (COD/MockCard): ", "Payment mode")
	if err != nil || !ok {
		return err
	}
	if m, known := paydomain.ParseMode(mode); known {
		mode = string(m)
	}

	out, err := c.d.Fulfillment.PlaceOrder(ctx, items, address, mode, c)
	if err != nil {
		return err
	}
	c.printOutcome(out)
	return nil
}

func (c *Console) advanceStatus(ctx context.Context) error {
	id, ok, err := c.promptRequired("Order ID: ", "Order ID")
	if err != nil || !ok {
		return err
	}
	out, err := c.d.Fulfillment.AdvanceStatus(ctx, id, c)
	if err != nil {
		return err
	}
	c.printOutcome(out)
	return nil
}

func (c *Console) viewLogs(context.Context) error {
	id, ok, err := c.promptRequired("Order ID: ", "Order ID")
	if err != nil || !ok {
		return err
	}
	logs, err := c.d.Journal.OrderLogs(id)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		c.printf("No logs for order %s.\n", domain.NormalizeOrderID(id))
		return nil
	}
	for _, l := range logs {
		c.printf("- %s\n", l)
	}
	return nil
}

func (c *Console) searchOrders(context.Context) error {
	q, err := c.prompt("Order ID or status (Enter for advanced filter): ")
	if err != nil {
		return err
	}
	if q == "" {
		return c.filterOrders()
	}
	if st, perr := domain.ParseStatus(q); perr == nil {
		c.listOrders(orderFilter{status: st})
		return nil
	}
	o, found := c.d.Store.Order(q)
	if !found {
		c.printf("Order %s not found.\n", domain.NormalizeOrderID(q))
		return nil
	}
	c.printOrder(o)
	return nil
}

// orderFilter matches orders on every non-empty criterion.
type orderFilter struct {
	status      domain.OrderStatus
	paymentMode string
	date        string
}

func (f orderFilter) match(o *domain.Order) bool {
	if f.status != "" && o.Status != f.status {
		return false
	}
	if f.paymentMode != "" && !strings.EqualFold(o.PaymentMode, f.paymentMode) {
		return false
	}
	return f.date == "" || o.Date == f.date
}

func (c *Console) filterOrders() error {
	var f orderFilter
	status, err := c.prompt("Status (Enter for any): ")
	if err != nil {
		return err
	}
	if status != "" {
		st, perr := domain.ParseStatus(status)
		if perr != nil {
			c.printf("Unknown status %q.\n", status)
			return nil
		}
		f.status = st
	}
	if f.paymentMode, err = c.prompt("Payment mode (Enter for any): "); err != nil {
		return err
	}
	if f.date, err = c.prompt("Date YYYY-MM-DD (Enter for any): "); err != nil {
		return err
	}
	c.printf("Orders matching filters - Status: %s, Payment: %s, Date: %s:\n",
		anyIfEmpty(string(f.status)), anyIfEmpty(f.paymentMode), anyIfEmpty(f.date))
	c.listOrders(f)
	return nil
}

func anyIfEmpty(s string) string {
	if s == "" {
		return "Any"
	}
	return s
}

func (c *Console) listOrders(f orderFilter) {
	n := 0
	for _, o := range c.d.Store.Orders() {
		if !f.match(o) {
			continue
		}
		n++
		c.printf("- %s | Date: %s | Payment: %s | Status: %s | Total: BDT %d", o.ID, o.Date, o.PaymentMode, o.Status, o.Total)
		if o.CancelReason != "" {
			c.printf(" | CancelReason: %s", o.CancelReason)
		}
		c.println("")
	}
	if n == 0 {
		c.println("No orders found matching the given criteria.")
	}
}
func (c *Console) printOrder(o *domain.Order) {
	c.printf("Order ID: %s\n", o.ID)
	c.printf("Date: %s\n", o.Date)
	c.printf("Address: %s\n", o.Address)
	c.printf("Payment: %s\n", o.PaymentMode)
	c.printf("Status: %s\n", o.Status)
	if o.CancelReason != "" {
		c.printf("Cancel reason: %s\n", o.CancelReason)
	}
	if o.TrackingID != "" {
		c.printf("Tracking ID: %s\n", o.TrackingID)
	}
	c.printf("Items: %s\n", domain.FormatItems(o.Items))
	c.printf("Total: BDT %d\n", o.Total)
}

func (c *Console) receipt(context.Context) error {
	id, ok, err := c.promptRequired("Order ID for receipt: ", "Order ID")
	if err != nil || !ok {
		return err
	}
	path, err := c.d.Receipts.Write(id)
	if err != nil {
		return err
	}
	c.printf("Receipt generated: %s\n", path)
	return nil
}

func (c *Console) filterProducts(context.Context) error {
	choice, err := c.prompt("Filter by Brand or Category? (B/C): ")
	if err != nil {
		return err
	}
	choice = strings.ToUpper(choice)
	if choice != "B" && choice != "C" {
		c.println("Invalid choice. Enter 'B' for Brand or 'C' for Category.")
		return nil
	}
	what := "Category"
	if choice == "B" {
		what = "Brand"
	}
	keyword, ok, err := c.promptRequired(what+" name: ", "Input")
	if err != nil || !ok {
		return err
	}
	needle := strings.ToLower(keyword)
	var hits []*invdomain.Product
	for _, p := range c.d.Store.Products() {
		field := p.Category
		if choice == "B" {
			field = p.Brand
		}
		if strings.Contains(strings.ToLower(field), needle) {
			hits = append(hits, p)
		}
	}
	if len(hits) == 0 {
		c.printf("No products found for %q.\n", keyword)
		return nil
	}
	c.printf("Filtered products (%s contains %q):\n", what, keyword)
	for _, p := range hits {
		c.printf("- %s | %s | BDT %d | Stock: %d\n", p.ID, p.Name, p.Price, p.Stock)
	}
	return nil
}

func (c *Console) printProduct(p *invdomain.Product) {
	c.printf("%s | %s | %s | %s | BDT %d | stock %d\n", p.ID, p.Category, p.Brand, p.Name, p.Price, p.Stock)
}

func (c *Console) manageProducts(ctx context.Context) error {
	action, err := c.prompt("Choose action - [A]dd, [E]dit, [D]elete, [L]ist: ")
	if err != nil {
		return err
	}
	var changed bool
	switch strings.ToUpper(action) {
	case "A":
		changed, err = c.addProduct()
	case "E":
		changed, err = c.editProduct()
	case "D":
		changed, err = c.deleteProduct()
	case "L":
		for _, p := range c.d.Store.Products() {
			c.printProduct(p)
		}
	default:
		c.println("Invalid action.")
	}
	if err != nil || !changed {
		return err
	}
	return c.d.Store.Save(ctx)
}

func (c *Console) addProduct() (bool, error) {
	var fields [4]string
	for i, label := range []string{"Product ID", "Category", "Brand", "Name"} {
		v, ok, err := c.promptRequired(label+": ", label)
		if err != nil || !ok {
			return false, err
		}
		fields[i] = v
	}
	if _, exists := c.d.Store.Product(fields[0]); exists {
		c.printf("Product ID %s already exists.\n", fields[0])
		return false, nil
	}
	price, ok, err := c.promptAmount("Price: ")
	if err != nil || !ok {
		return false, err
	}
	stock, ok, err := c.promptAmount("Initial stock: ")
	if err != nil || !ok {
		return false, err
	}
	p := invdomain.Product{ID: fields[0], Category: fields[1], Brand: fields[2], Name: fields[3], Price: price, Stock: stock}
	if err := c.d.Store.AddProduct(p); err != nil {
		return false, err
	}
	c.log.Info("product added", "product_id", p.ID, "by", c.user.Username)
	c.printf("Product %s added.\n", p.ID)
	return true, nil
}

func (c *Console) editProduct() (bool, error) {
	id, ok, err := c.promptRequired("Product ID to edit: ", "Product ID")
	if err != nil || !ok {
		return false, err
	}
	p, found := c.d.Store.Product(id)
	if !found {
		c.printf("Product %s not found.\n", id)
		return false, nil
	}
	field, err := c.prompt("Edit field - [N]ame, [P]rice, [S]tock: ")
	if err != nil {
		return false, err
	}
	switch strings.ToUpper(field) {
	case "N":
		name, ok, err := c.promptRequired("New name: ", "Name")
		if err != nil || !ok {
			return false, err
		}
		p.Name = name
		c.printf("Product %s name updated.\n", p.ID)
	case "P":
		price, ok, err := c.promptAmount("New price: ")
		if err != nil || !ok {
			return false, err
		}
		if price == 0 {
			c.println("Price must be positive.")
			return false, nil
		}
		p.Price = price
		c.printf("Product %s price updated.\n", p.ID)
	case "S":
		stock, ok, err := c.promptAmount("New stock value: ")
		if err != nil || !ok {
			return false, err
		}
		p.Stock = stock
		c.printf("Product %s stock updated.\n", p.ID)
	default:
		c.println("Invalid field selection.")
		return false, nil
	}
	c.log.Info("product edited", "product_id", p.ID, "field", strings.ToUpper(field), "by", c.user.Username)
	return true, nil
}

func (c *Console) deleteProduct() (bool, error) {
	id, ok, err := c.promptRequired("Product ID to delete: ", "Product ID")
	if err != nil || !ok {
		return false, err
	}
	if _, found := c.d.Store.Product(id); !found {
		c.printf("Product %s not found.\n", id)
		return false, nil
	}
	answer, err := c.prompt("Are you sure you want to delete " + id + "? (Y/N): ")
	if err != nil {
		return false, err
	}
	if a := strings.ToUpper(answer); a != "Y" && a != "YES" {
		c.println("Deletion cancelled.")
		return false, nil
	}
	if err := c.d.Store.RemoveProduct(strings.TrimSpace(id)); err != nil {
		return false, err
	}
	c.log.Info("product deleted", "product_id", id, "by", c.user.Username)
	c.printf("Product %s deleted.\n", id)
	return true, nil
}
func (c *Console) promptAmount(label string) (int64, bool, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return 0, false, err
	}
	n, perr := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if perr != nil || n < 0 {
		c.println("Invalid number.")
		return 0, false, nil
	}
	return n, true, nil
}

func (c *Console) lowStock(context.Context) error {
	low := c.d.Ledger.LowStock(c.d.LowStockThreshold)
	if len(low) == 0 {
		c.printf("All products have at least %d units.\n", c.d.LowStockThreshold)
		return nil
	}
	for i := range low {
		c.printProduct(&low[i])
	}
	return nil
}

func (c *Console) restock(ctx context.Context) error {
	id, ok, err := c.promptRequired("Product ID: ", "Product ID")
	if err != nil || !ok {
		return err
	}
	raw, err := c.prompt("Quantity to add: ")
	if err != nil {
		return err
	}
	qty, perr := strconv.Atoi(raw)
	if perr != nil || qty <= 0 {
		c.println("Invalid quantity.")
		return nil
	}
	stock, err := c.d.Ledger.Restock(id, qty)
	if err != nil {
		return err
	}
	c.printf("Product %s restocked, stock now %d.\n", id, stock)
	return c.d.Store.Save(ctx)
}

func (c *Console) stockReport(context.Context) error {
	path, err := c.d.Reporter.WriteStockReport()
	if err != nil {
		return err
	}
	c.printf("Stock report generated in %s\n", path)
	return nil
}

func (c *Console) bulkImport(ctx context.Context) error {
	path, err := c.prompt(fmt.Sprintf("Import file (Enter for %s): ", c.d.ImportPath))
	if err != nil {
		return err
	}
	if path == "" {
		path = c.d.ImportPath
	}
	res, err := c.d.Fulfillment.ImportOrders(ctx, path)
	if err != nil {
		return err
	}
	for _, id := range res.Imported {
		c.printf("Imported: %s\n", id)
	}
	for from, to := range res.Renamed {
		c.printf("Order id %q replaced by %s\n", from, to)
	}
	if len(res.Skipped) > 0 {
		c.printf("Skipped lines: %v\n", res.Skipped)
	}
	c.printf("%d orders imported from %s.\n", len(res.Imported), filepath.Base(path))
	return nil
}

func (c *Console) archive(ctx context.Context) error {
	raw, err := c.prompt("Archive delivered orders older than how many days? ")
	if err != nil {
		return err
	}
	days, perr := strconv.Atoi(raw)
	if perr != nil || days <= 0 {
		c.println("Invalid number of days.")
		return nil
	}
	res, err := c.d.Archiver.Archive(ctx, days, c.now())
	if err != nil {
		return err
	}
	c.printf("Archived %d delivered orders (older than %d days).\n", len(res.Archived), days)
	return nil
}

func (c *Console) reorder(ctx context.Context) error {
	id, ok, err := c.promptRequired("Order ID to reorder: ", "Order ID")
	if err != nil || !ok {
		return err
	}
	out, err := c.d.Fulfillment.Reorder(ctx, id, c)
	if err != nil {
		return err
	}
	c.printOutcome(out)
	return nil
}

func (c *Console) retry(ctx context.Context) error {
	id, ok, err := c.promptRequired("Cancelled order ID to retry: ", "Order ID")
	if err != nil || !ok {
		return err
	}
	out, err := c.d.Fulfillment.Retry(ctx, id, c)
	if err != nil {
		return err
	}
	c.printOutcome(out)
	return nil
}

func (c *Console) clearLogs(context.Context) error {
	answer, err := c.prompt("Clear all order logs? (Y/N): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		c.println("Logs kept.")
		return nil
	}
	if err := c.d.Journal.ClearOrderLogs(); err != nil {
		return err
	}
	c.println("Order logs cleared.")
	return nil
}

func (c *Console) addAdmin(ctx context.Context) error {
	username, err := c.prompt("New admin username: ")
	if err != nil {
		return err
	}
	password, err := c.prompt("New admin password: ")
	if err != nil {
		return err
	}
	role, err := c.prompt("Role (ADMIN, MANAGER, SUPPORT): ")
	if err != nil {
		return err
	}
	a, err := c.d.Admins.AddAdmin(ctx, c.user, username, password, role)
	if err != nil {
		return err
	}
	c.printf("New admin %s (%s) added.\n", a.Username, a.Role)
	return nil
}

func (c *Console) changePassword(ctx context.Context) error {
	current, err := c.prompt("Current password: ")
	if err != nil {
		return err
	}
	next, err := c.prompt("New password: ")
	if err != nil {
		return err
	}
	confirm, err := c.prompt("Confirm new password: ")
	if err != nil {
		return err
	}
	if err := c.d.Admins.ChangePassword(ctx, c.user, current, next, confirm); err != nil {
		return err
	}
	c.println("Password changed.")
	return nil
}

func (c *Console) report(context.Context) error {
	rep, path, err := c.d.Reporter.Write()
	if err != nil {
		return err
	}
	c.printf("Total Orders: %d, Delivered: %d, Cancelled: %d, Revenue: BDT %d\n",
		rep.TotalOrders, rep.DeliveredOrders, rep.CancelledOrders, rep.Revenue)
	c.printf("Report written to %s\n", path)
	return nil
}

func (c *Console) simulate(ctx context.Context) error {
	c.println("1. Successful order")
	c.println("2. Payment failure scenario")
	c.println("3. Inventory shortage scenario")
	c.println("4. Mixed order scenario")
	raw, err := c.prompt("Choose scenario (1-4): ")
	if err != nil {
		return err
	}
	scenario, perr := strconv.Atoi(raw)
	if perr != nil || scenario < 1 || scenario > 4 {
		c.println("Invalid scenario selection.")
		return nil
	}
	out, err := c.d.Fulfillment.Simulate(ctx, scenario)
	if err != nil {
		return err
	}
	c.printf("Simulation Order %s created (Status: %s).\n", out.Order.ID, out.Order.Status)
	return nil
}

func (c *Console) loadTestData(ctx context.Context) error {
	path, ok, err := c.promptRequired("Test data filename (e.g. testdata.txt): ", "Filename")
	if err != nil || !ok {
		return err
	}
	res, err := c.d.Fulfillment.LoadTestData(ctx, path)
	var corrupt *store.CorruptError
	if err != nil && !errors.As(err, &corrupt) {
		return err
	}
	if corrupt != nil {
		c.printf("Warning: %v\n", corrupt)
	}
	c.println("Loaded test data successfully")
	c.printf("-> %d products loaded.\n", res.Products)
	c.printf("-> %d orders loaded.\n", res.Orders)
	c.printf("-> %d admins loaded.\n", res.Admins)
	return nil
}

func (c *Console) printOutcome(out orchdomain.Outcome) {
	c.println(out.Message)
	for _, ev := range out.Events {
		c.printf("  %s\n", ev.Message)
	}
}
