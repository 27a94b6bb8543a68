// Package memstore is the in-memory storage backend: locked maps per entity
// collection, write-through semantics, read-your-writes within the process.
package memstore

import (
	"context"
	"sort"
	"sync"

	"ordergw/internal/apperr"
	"ordergw/internal/model"
	"ordergw/internal/store"
)

// Store holds the process-wide collections. One instance is shared by every
// unit of work the factory hands out. Each collection has its own lock so
// unrelated entity types never serialize against each other.
type Store struct {
	customers customersRepo
	products  productsRepo
	orders    ordersRepo
}

func New() *Store {
	return &Store{
		customers: customersRepo{
			byID:    make(map[string]model.Customer),
			byEmail: make(map[string]string),
		},
		products: productsRepo{
			byID:   make(map[string]model.Product),
			byNorm: make(map[string]string),
		},
		orders: ordersRepo{
			byID: make(map[string]model.Order),
		},
	}
}

// Factory returns a store.Factory handing out this shared instance.
func (s *Store) Factory() store.Factory {
	return func(context.Context) (store.UnitOfWork, error) {
		return &uow{s: s}, nil
	}
}

// uow is write-through: Commit and Rollback are no-ops because every save is
// already atomic under its collection lock.
type uow struct{ s *Store }

func (u *uow) Customers() store.CustomersRepo { return &u.s.customers }
func (u *uow) Products() store.ProductsRepo   { return &u.s.products }
func (u *uow) Orders() store.OrdersRepo       { return &u.s.orders }
func (u *uow) Commit() error                  { return nil }
func (u *uow) Rollback() error                { return nil }

// ---- customers ----

type customersRepo struct {
	mu      sync.RWMutex
	byID    map[string]model.Customer
	byEmail map[string]string // normalized email -> cust_id
}

func (r *customersRepo) ByID(_ context.Context, custID string) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byID[custID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *customersRepo) ExistsID(_ context.Context, custID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[custID]
	return ok, nil
}

func (r *customersRepo) ExistsEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[model.NormalizeEmail(email)]
	return ok, nil
}

func (r *customersRepo) Save(_ context.Context, c model.Customer) error {
	norm := model.NormalizeEmail(c.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Uniqueness enforced here, under the same lock as the write, so two
	// concurrent saves with the same email cannot both win.
	if owner, ok := r.byEmail[norm]; ok && owner != c.CustID {
		return apperr.Conflict(apperr.CodeEmailDup, "email already exists")
	}
	r.byID[c.CustID] = c
	r.byEmail[norm] = c.CustID
	return nil
}

// ---- products ----

type productsRepo struct {
	mu     sync.RWMutex
	byID   map[string]model.Product
	byNorm map[string]string // normalized name -> prod_id
}

func (r *productsRepo) ByID(_ context.Context, prodID string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.byID[prodID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *productsRepo) ExistsID(_ context.Context, prodID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[prodID]
	return ok, nil
}

func (r *productsRepo) NameNormExists(_ context.Context, nameNorm string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byNorm[nameNorm]
	return ok, nil
}

func (r *productsRepo) Save(_ context.Context, p model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byNorm[p.NameNorm]; ok && owner != p.ProdID {
		return apperr.Conflict(apperr.CodeNameDup, "product name already exists")
	}
	r.byID[p.ProdID] = p
	r.byNorm[p.NameNorm] = p.ProdID
	return nil
}

// ---- orders ----

type ordersRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Order
}

func (r *ordersRepo) ByID(_ context.Context, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if o, ok := r.byID[orderID]; ok {
		cp := o
		cp.Items = append([]model.OrderLine(nil), o.Items...)
		return &cp, nil
	}
	return nil, nil
}

func (r *ordersRepo) ExistsID(_ context.Context, orderID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[orderID]
	return ok, nil
}

func (r *ordersRepo) Save(_ context.Context, o model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[o.OrderID]; ok {
		return apperr.Conflict(apperr.CodeDBIntegrity, "order id already exists")
	}
	o.Items = append([]model.OrderLine(nil), o.Items...)
	r.byID[o.OrderID] = o
	return nil
}

func (r *ordersRepo) Search(_ context.Context, q store.SearchQuery) ([]model.OrderSummary, int, error) {
	r.mu.RLock()
	matched := make([]model.Order, 0, len(r.byID))
	for _, o := range r.byID {
		if q.CustID != "" && o.CustID != q.CustID {
			continue
		}
		if q.From != nil && o.OrderDate.Before(*q.From) {
			continue
		}
		if q.To != nil && o.OrderDate.After(*q.To) {
			continue
		}
		matched = append(matched, o)
	}
	r.mu.RUnlock()

	// Order date descending; order ID descending breaks ties so pagination
	// is stable.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OrderDate.Equal(matched[j].OrderDate) {
			return matched[i].OrderDate.After(matched[j].OrderDate)
		}
		return matched[i].OrderID > matched[j].OrderID
	})

	total := len(matched)
	start := q.Page * q.Size
	if start > total {
		start = total
	}
	end := start + q.Size
	if end > total {
		end = total
	}

	page := make([]model.OrderSummary, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, model.OrderSummary{
			OrderID:     o.OrderID,
			OrderDate:   o.OrderDate,
			TotalAmount: o.TotalAmount,
		})
	}
	return page, total, nil
}
