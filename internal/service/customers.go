package service

import (
	"context"
	"strings"

	"ordergw/internal/apperr"
	"ordergw/internal/metrics"
	"ordergw/internal/model"
	"ordergw/internal/store"
)

// Customers creates and reads customers through the storage abstraction.
type Customers struct {
	factory store.Factory
}

func NewCustomers(factory store.Factory) *Customers {
	return &Customers{factory: factory}
}

// Create persists a new customer. The email uniqueness precheck and the save
// run inside the same unit of work; the save itself re-enforces uniqueness
// atomically, so concurrent duplicates cannot slip through the gap.
func (s *Customers) Create(ctx context.Context, name, email string) (*model.Customer, error) {
	uow, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	customers := uow.Customers()

	custID, err := generateID(ctx, "C", "customer", customers.ExistsID)
	if err != nil {
		return nil, err
	}

	c := model.Customer{
		CustID: custID,
		Name:   strings.TrimSpace(name),
		Email:  model.NormalizeEmail(email),
	}

	dup, err := customers.ExistsEmail(ctx, c.Email)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, apperr.Conflict(apperr.CodeEmailDup, "email already exists")
	}

	if err := customers.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("customer").Inc()
	return &c, nil
}
