package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	admindomain "github.com/dmehra2102/order-fulfillment-console/internal/admin/domain"
	invdomain "github.com/dmehra2102/order-fulfillment-console/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id       TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	brand    TEXT NOT NULL,
	name     TEXT NOT NULL,
	price    BIGINT NOT NULL,
	stock    BIGINT NOT NULL,
	position INT NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
	id            TEXT PRIMARY KEY,
	order_date    TEXT NOT NULL,
	address       TEXT NOT NULL,
	payment_mode  TEXT NOT NULL,
	status        TEXT NOT NULL,
	total         BIGINT NOT NULL,
	cancel_reason TEXT NOT NULL,
	tracking_id   TEXT NOT NULL,
	position      INT NOT NULL
);
CREATE TABLE IF NOT EXISTS order_items (
	order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	line       INT NOT NULL,
	product_id TEXT NOT NULL,
	quantity   INT NOT NULL,
	PRIMARY KEY (order_id, line)
);
CREATE TABLE IF NOT EXISTS admins (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	position      INT NOT NULL
);
CREATE TABLE IF NOT EXISTS store_meta (
	id         INT PRIMARY KEY,
	high_water INT NOT NULL
);`

// Repository mirrors the record store into Postgres. Each save replaces the
// mirrored state in a single transaction.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func (r *Repository) Save(ctx context.Context, snap store.Snapshot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `TRUNCATE products, order_items, orders, admins`); err != nil {
		return fmt.Errorf("truncate mirror: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range snap.Products {
		batch.Queue(`INSERT INTO products (id, category, brand, name, price, stock, position) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.Category, p.Brand, p.Name, p.Price, p.Stock, i)
	}
	for i, o := range snap.Orders {
		batch.Queue(`INSERT INTO orders (id, order_date, address, payment_mode, status, total, cancel_reason, tracking_id, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, o.Date, o.Address, o.PaymentMode, string(o.Status), o.Total, o.CancelReason, o.TrackingID, i)
		for line, it := range o.Items {
			batch.Queue(`INSERT INTO order_items (order_id, line, product_id, quantity) VALUES ($1,$2,$3,$4)`,
				o.ID, line, it.ProductID, it.Quantity)
		}
	}
	for i, a := range snap.Admins {
		batch.Queue(`INSERT INTO admins (username, password_hash, role, position) VALUES ($1,$2,$3,$4)`,
			a.Username, a.PasswordHash, string(a.Role), i)
	}
	batch.Queue(`INSERT INTO store_meta (id, high_water) VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE SET high_water = $1`, snap.HighWater)

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	r.log.Debug("mirror saved", "products", len(snap.Products), "orders", len(snap.Orders))
	return nil
}

func (r *Repository) Load(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot

	rows, err := r.pool.Query(ctx, `SELECT id, category, brand, name, price, stock FROM products ORDER BY position`)
	if err != nil {
		return store.Snapshot{}, err
	}
	snap.Products, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (invdomain.Product, error) {
		var p invdomain.Product
		err := row.Scan(&p.ID, &p.Category, &p.Brand, &p.Name, &p.Price, &p.Stock)
		return p, err
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, order_date, address, payment_mode, status, total, cancel_reason, tracking_id FROM orders ORDER BY position`)
	if err != nil {
		return store.Snapshot{}, err
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		var o domain.Order
		var status string
		if err := row.Scan(&o.ID, &o.Date, &o.Address, &o.PaymentMode, &status, &o.Total, &o.CancelReason, &o.TrackingID); err != nil {
			return o, err
		}
		o.Status = domain.OrderStatus(status)
		return o, nil
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	items := map[string][]domain.OrderItem{}
	rows, err = r.pool.Query(ctx, `SELECT order_id, product_id, quantity FROM order_items ORDER BY order_id, line`)
	if err != nil {
		return store.Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it domain.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity); err != nil {
			return store.Snapshot{}, err
		}
		items[orderID] = append(items[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	snap.Orders = orders

	rows, err = r.pool.Query(ctx, `SELECT username, password_hash, role FROM admins ORDER BY position`)
	if err != nil {
		return store.Snapshot{}, err
	}
	snap.Admins, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (admindomain.Admin, error) {
		var a admindomain.Admin
		var role string
		err := row.Scan(&a.Username, &a.PasswordHash, &role)
		a.Role = admindomain.Role(role)
		return a, err
	})
	if err != nil {
		return store.Snapshot{}, err
	}

	err = r.pool.QueryRow(ctx, `SELECT high_water FROM store_meta WHERE id = 1`).Scan(&snap.HighWater)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return store.Snapshot{}, err
	}
	return snap, nil
}

var _ store.Persister = (*Repository)(nil)
