// Package store defines the storage-agnostic unit-of-work and repository
// contracts for customers, products, and orders. Two backends implement
// them: memstore (locked maps, write-through) and sqlstore (sqlx
// transactions over MySQL or SQLite). Callers must not be able to tell them
// apart by behavior: the same conflict taxonomy, the same search ordering.
package store

import (
	"context"
	"time"

	"ordergw/internal/model"
)

type CustomersRepo interface {
	ByID(ctx context.Context, custID string) (*model.Customer, error)
	ExistsID(ctx context.Context, custID string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	// Save persists the customer, failing with EMAIL_DUP on a duplicate
	// email (case-insensitive). The uniqueness check is atomic with the
	// write.
	Save(ctx context.Context, c model.Customer) error
}

type ProductsRepo interface {
	ByID(ctx context.Context, prodID string) (*model.Product, error)
	ExistsID(ctx context.Context, prodID string) (bool, error)
	NameNormExists(ctx context.Context, nameNorm string) (bool, error)
	// Save persists the product, failing with NAME_DUP on a duplicate
	// normalized name.
	Save(ctx context.Context, p model.Product) error
}

// SearchQuery filters the order search. From/To are inclusive; Page is
// zero-based.
type SearchQuery struct {
	CustID string
	From   *time.Time
	To     *time.Time
	Page   int
	Size   int
}

type OrdersRepo interface {
	ByID(ctx context.Context, orderID string) (*model.Order, error)
	ExistsID(ctx context.Context, orderID string) (bool, error)
	Save(ctx context.Context, o model.Order) error
	// Search returns one page sorted by order date descending (ties broken
	// by order ID descending, stable across pages) plus the pre-pagination
	// total count.
	Search(ctx context.Context, q SearchQuery) ([]model.OrderSummary, int, error)
}

// UnitOfWork groups repository writes into one transactional boundary.
// Commit flushes all writes atomically; Rollback discards them. The memory
// backend is write-through, so both are no-ops there, but callers must still
// follow the commit-or-rollback discipline for the SQL backend's sake.
type UnitOfWork interface {
	Customers() CustomersRepo
	Products() ProductsRepo
	Orders() OrdersRepo
	Commit() error
	Rollback() error
}

// Factory produces a unit of work for one request. Selected once at startup
// from configuration (memory singleton vs fresh SQL transaction).
type Factory func(ctx context.Context) (UnitOfWork, error)
