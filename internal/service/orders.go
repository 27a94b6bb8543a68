package service

import (
	"context"
	"time"

	"ordergw/internal/apperr"
	"ordergw/internal/metrics"
	"ordergw/internal/model"
	"ordergw/internal/store"
)

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ProdID string
	Qty    int
}

// Orders creates, reads, and searches orders through the storage
// abstraction.
type Orders struct {
	factory store.Factory

	now func() time.Time
}

func NewOrders(factory store.Factory) *Orders {
	return &Orders{factory: factory, now: time.Now}
}

// Create validates references and builds the order before any write: the
// customer must exist, every product must exist, and a product may appear in
// at most one line. Unit prices are snapshotted from the product at this
// moment and never recomputed. Nothing is persisted unless every check
// passes.
func (s *Orders) Create(ctx context.Context, custID string, items []OrderLineInput) (*model.Order, error) {
	uow, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	custOK, err := uow.Customers().ExistsID(ctx, custID)
	if err != nil {
		return nil, err
	}
	if !custOK {
		return nil, apperr.NotFound(apperr.CodeCustNotFound, "custId not found: %s", custID)
	}

	products := uow.Products()
	seen := make(map[string]struct{}, len(items))
	lines := make([]model.OrderLine, 0, len(items))
	var total int64
	for i, it := range items {
		if _, dup := seen[it.ProdID]; dup {
			return nil, apperr.Conflict(apperr.CodeItemDup, "duplicate product line: %s", it.ProdID)
		}
		seen[it.ProdID] = struct{}{}

		p, err := products.ByID(ctx, it.ProdID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperr.NotFound(apperr.CodeProdNotFound, "prodId not found: %s", it.ProdID)
		}

		amount := p.UnitPrice * int64(it.Qty)
		lines = append(lines, model.OrderLine{
			LineNo:     i + 1,
			ProdID:     it.ProdID,
			Qty:        it.Qty,
			UnitPrice:  p.UnitPrice,
			LineAmount: amount,
		})
		total += amount
	}

	orders := uow.Orders()
	orderID, err := generateID(ctx, "O", "order", orders.ExistsID)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}

	o := model.Order{
		OrderID:     orderID,
		CustID:      custID,
		OrderDate:   s.now().UTC().Truncate(24 * time.Hour),
		TotalAmount: total,
		Items:       lines,
	}
	if err := orders.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("order").Inc()
	return &o, nil
}

// Get returns one order with its lines.
func (s *Orders) Get(ctx context.Context, orderID string) (*model.Order, error) {
	uow, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	o, err := uow.Orders().ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound(apperr.CodeOrderNotFound, "orderId not found: %s", orderID)
	}
	return o, nil
}

// Search returns one page of matching orders plus the total match count.
func (s *Orders) Search(ctx context.Context, q store.SearchQuery) ([]model.OrderSummary, int, error) {
	uow, err := s.factory(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Orders().Search(ctx, q)
}
