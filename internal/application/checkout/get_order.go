package checkout

import (
	"context"

	domorder "github.com/tiendago/storefront/internal/domain/order"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
)

// Queries is the read side used by the HTTP layer: plain lookups, no
// orchestration, no telemetry beyond what the repositories carry.
type Queries struct {
	orderRepo   domorder.Repository
	productRepo domproduct.Repository
}

func NewQueries(orderRepo domorder.Repository, productRepo domproduct.Repository) *Queries {
	return &Queries{orderRepo: orderRepo, productRepo: productRepo}
}

func (q *Queries) GetOrder(ctx context.Context, id string) (*domorder.Order, error) {
	if id == "" {
		return nil, newValidation("order id is required")
	}
	ord, err := q.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return ord, nil
}

func (q *Queries) ListProducts(ctx context.Context) ([]*domproduct.Product, error) {
	products, err := q.productRepo.List(ctx)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return products, nil
}
