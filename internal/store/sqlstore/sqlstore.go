// Package sqlstore is the transactional storage backend over sqlx. It runs
// against MySQL in production and SQLite (modernc.org/sqlite) in development
// and tests. Driver integrity violations are re-signaled as the shared
// conflict taxonomy, never leaked raw.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"ordergw/internal/apperr"
	"ordergw/internal/model"
	"ordergw/internal/store"
)

const dateLayout = "2006-01-02"

// Store produces SQL-backed units of work.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Factory returns a store.Factory producing a fresh unit of work per
// request. The transaction begins lazily on first repository use.
func (s *Store) Factory() store.Factory {
	return func(ctx context.Context) (store.UnitOfWork, error) {
		return &uow{db: s.db, ctx: ctx}, nil
	}
}

type uow struct {
	db  *sqlx.DB
	ctx context.Context
	tx  *sqlx.Tx
}

func (u *uow) begin(ctx context.Context) (*sqlx.Tx, error) {
	if u.tx != nil {
		return u.tx, nil
	}
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	u.tx = tx
	return tx, nil
}

func (u *uow) Customers() store.CustomersRepo { return &customersRepo{u: u} }
func (u *uow) Products() store.ProductsRepo   { return &productsRepo{u: u} }
func (u *uow) Orders() store.OrdersRepo       { return &ordersRepo{u: u} }

func (u *uow) Commit() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Commit()
	u.tx = nil
	return err
}

func (u *uow) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback()
	u.tx = nil
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// conflictFrom maps a driver unique-violation error onto the application
// taxonomy. The constraint name embedded in the driver message selects the
// code. Non-integrity errors pass through unchanged.
func conflictFrom(err error) error {
	if err == nil {
		return nil
	}

	var my *mysql.MySQLError
	isDup := errors.As(err, &my) && my.Number == 1062
	if !isDup {
		isDup = strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	if !isDup {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return apperr.Conflict(apperr.CodeEmailDup, "email already exists").Wrap(err)
	case strings.Contains(msg, "name_norm"):
		return apperr.Conflict(apperr.CodeNameDup, "product name already exists").Wrap(err)
	default:
		return apperr.Conflict(apperr.CodeDBIntegrity, "integrity violation").Wrap(err)
	}
}

// ---- customers ----

type customersRepo struct{ u *uow }

func (r *customersRepo) ByID(ctx context.Context, custID string) (*model.Customer, error) {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return nil, err
	}
	var c model.Customer
	err = tx.GetContext(ctx, &c, `
		SELECT cust_id, name, email
		  FROM customers
		 WHERE cust_id = ? LIMIT 1
	`, custID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customersRepo) ExistsID(ctx context.Context, custID string) (bool, error) {
	return r.u.exists(ctx, `SELECT COUNT(*) FROM customers WHERE cust_id = ?`, custID)
}

func (r *customersRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return r.u.exists(ctx, `SELECT COUNT(*) FROM customers WHERE email = ?`,
		model.NormalizeEmail(email))
}

func (r *customersRepo) Save(ctx context.Context, c model.Customer) error {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO customers (cust_id, name, email)
		VALUES (?, ?, ?)
	`, c.CustID, c.Name, model.NormalizeEmail(c.Email))
	return conflictFrom(err)
}

// ---- products ----

type productsRepo struct{ u *uow }

func (r *productsRepo) ByID(ctx context.Context, prodID string) (*model.Product, error) {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return nil, err
	}
	var p model.Product
	err = tx.GetContext(ctx, &p, `
		SELECT prod_id, name, name_norm, unit_price
		  FROM products
		 WHERE prod_id = ? LIMIT 1
	`, prodID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productsRepo) ExistsID(ctx context.Context, prodID string) (bool, error) {
	return r.u.exists(ctx, `SELECT COUNT(*) FROM products WHERE prod_id = ?`, prodID)
}

func (r *productsRepo) NameNormExists(ctx context.Context, nameNorm string) (bool, error) {
	return r.u.exists(ctx, `SELECT COUNT(*) FROM products WHERE name_norm = ?`, nameNorm)
}

func (r *productsRepo) Save(ctx context.Context, p model.Product) error {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (prod_id, name, name_norm, unit_price)
		VALUES (?, ?, ?, ?)
	`, p.ProdID, p.Name, p.NameNorm, p.UnitPrice)
	return conflictFrom(err)
}

// ---- orders ----

type ordersRepo struct{ u *uow }

type orderRow struct {
	OrderID     string `db:"order_id"`
	CustID      string `db:"cust_id"`
	OrderDate   string `db:"order_date"`
	TotalAmount int64  `db:"total_amount"`
}

type lineRow struct {
	OrderID    string `db:"order_id"`
	LineNo     int    `db:"line_no"`
	ProdID     string `db:"prod_id"`
	Qty        int    `db:"qty"`
	UnitPrice  int64  `db:"unit_price"`
	LineAmount int64  `db:"line_amount"`
}

func (r *ordersRepo) ByID(ctx context.Context, orderID string) (*model.Order, error) {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return nil, err
	}
	var row orderRow
	err = tx.GetContext(ctx, &row, `
		SELECT order_id, cust_id, order_date, total_amount
		  FROM orders
		 WHERE order_id = ? LIMIT 1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []lineRow
	if err := tx.SelectContext(ctx, &lines, `
		SELECT order_id, line_no, prod_id, qty, unit_price, line_amount
		  FROM order_lines
		 WHERE order_id = ?
		 ORDER BY line_no
	`, orderID); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, row.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("parse order_date %q: %w", row.OrderDate, err)
	}
	o := &model.Order{
		OrderID:     row.OrderID,
		CustID:      row.CustID,
		OrderDate:   date,
		TotalAmount: row.TotalAmount,
	}
	for _, l := range lines {
		o.Items = append(o.Items, model.OrderLine{
			OrderID:    l.OrderID,
			LineNo:     l.LineNo,
			ProdID:     l.ProdID,
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
			LineAmount: l.LineAmount,
		})
	}
	return o, nil
}

func (r *ordersRepo) ExistsID(ctx context.Context, orderID string) (bool, error) {
	return r.u.exists(ctx, `SELECT COUNT(*) FROM orders WHERE order_id = ?`, orderID)
}

func (r *ordersRepo) Save(ctx context.Context, o model.Order) error {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (order_id, cust_id, order_date, total_amount)
		VALUES (?, ?, ?, ?)
	`, o.OrderID, o.CustID, o.OrderDate.Format(dateLayout), o.TotalAmount)
	if err != nil {
		return conflictFrom(err)
	}
	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, line_no, prod_id, qty, unit_price, line_amount)
			VALUES (?, ?, ?, ?, ?, ?)
		`, o.OrderID, it.LineNo, it.ProdID, it.Qty, it.UnitPrice, it.LineAmount)
		if err != nil {
			return conflictFrom(err)
		}
	}
	return nil
}

func (r *ordersRepo) Search(ctx context.Context, q store.SearchQuery) ([]model.OrderSummary, int, error) {
	tx, err := r.u.begin(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := " WHERE 1=1"
	args := []any{}
	if q.CustID != "" {
		where += " AND cust_id = ?"
		args = append(args, q.CustID)
	}
	if q.From != nil {
		where += " AND order_date >= ?"
		args = append(args, q.From.Format(dateLayout))
	}
	if q.To != nil {
		where += " AND order_date <= ?"
		args = append(args, q.To.Format(dateLayout))
	}

	var total int
	if err := tx.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM orders`+where, args...); err != nil {
		return nil, 0, err
	}

	var rows []orderRow
	pageArgs := append(append([]any{}, args...), q.Size, q.Page*q.Size)
	if err := tx.SelectContext(ctx, &rows, `
		SELECT order_id, cust_id, order_date, total_amount
		  FROM orders`+where+`
		 ORDER BY order_date DESC, order_id DESC
		 LIMIT ? OFFSET ?
	`, pageArgs...); err != nil {
		return nil, 0, err
	}

	out := make([]model.OrderSummary, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(dateLayout, row.OrderDate)
		if err != nil {
			return nil, 0, fmt.Errorf("parse order_date %q: %w", row.OrderDate, err)
		}
		out = append(out, model.OrderSummary{
			OrderID:     row.OrderID,
			OrderDate:   date,
			TotalAmount: row.TotalAmount,
		})
	}
	return out, total, nil
}

func (u *uow) exists(ctx context.Context, query string, args ...any) (bool, error) {
	tx, err := u.begin(ctx)
	if err != nil {
		return false, err
	}
	var n int
	if err := tx.GetContext(ctx, &n, query, args...); err != nil {
		return false, err
	}
	return n > 0, nil
}
