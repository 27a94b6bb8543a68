package service

import (
	"context"
	"strings"

	"ordergw/internal/apperr"
	"ordergw/internal/metrics"
	"ordergw/internal/model"
	"ordergw/internal/store"
)

// Products creates products through the storage abstraction.
type Products struct {
	factory store.Factory
}

func NewProducts(factory store.Factory) *Products {
	return &Products{factory: factory}
}

// Create persists a new product. Name uniqueness is case-insensitive over
// the trimmed name.
func (s *Products) Create(ctx context.Context, name string, unitPrice int64) (*model.Product, error) {
	uow, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	products := uow.Products()

	norm := model.NormalizeProductName(name)
	dup, err := products.NameNormExists(ctx, norm)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, apperr.Conflict(apperr.CodeNameDup, "product name already exists")
	}

	prodID, err := generateID(ctx, "P", "product", products.ExistsID)
	if err != nil {
		return nil, err
	}

	p := model.Product{
		ProdID:    prodID,
		Name:      strings.TrimSpace(name),
		NameNorm:  norm,
		UnitPrice: unitPrice,
	}
	if err := products.Save(ctx, p); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	metrics.EntitiesCreatedTotal.WithLabelValues("product").Inc()
	return &p, nil
}
