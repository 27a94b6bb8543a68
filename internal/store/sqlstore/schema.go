package sqlstore

// SQLiteSchema creates the tables for the SQLite driver (development and
// tests). The MySQL deployment uses migrations/001_init.sql instead; the two
// must stay aligned on constraint names because conflictFrom matches them.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS customers (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	cust_id  TEXT NOT NULL,
	name     TEXT NOT NULL,
	email    TEXT NOT NULL,
	CONSTRAINT uq_customers_cust_id UNIQUE (cust_id),
	CONSTRAINT uq_customers_email UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS products (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	prod_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	name_norm  TEXT NOT NULL,
	unit_price INTEGER NOT NULL,
	CONSTRAINT uq_products_prod_id UNIQUE (prod_id),
	CONSTRAINT uq_products_name_norm UNIQUE (name_norm)
);

CREATE TABLE IF NOT EXISTS orders (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id     TEXT NOT NULL,
	cust_id      TEXT NOT NULL REFERENCES customers(cust_id),
	order_date   TEXT NOT NULL,
	total_amount INTEGER NOT NULL DEFAULT 0,
	CONSTRAINT uq_orders_order_id UNIQUE (order_id)
);
CREATE INDEX IF NOT EXISTS ix_orders_cust_date ON orders(cust_id, order_date);

CREATE TABLE IF NOT EXISTS order_lines (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id    TEXT NOT NULL REFERENCES orders(order_id),
	line_no     INTEGER NOT NULL,
	prod_id     TEXT NOT NULL REFERENCES products(prod_id),
	qty         INTEGER NOT NULL,
	unit_price  INTEGER NOT NULL,
	line_amount INTEGER NOT NULL,
	CONSTRAINT uq_order_lines_line UNIQUE (order_id, line_no)
);
`
