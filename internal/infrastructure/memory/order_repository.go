package memory

import (
	"context"
	"errors"
	"sync"

	domorder "github.com/tiendago/storefront/internal/domain/order"
)

var errOrderIDRequired = errors.New("memory: order id is required")

// OrderRepository keeps orders in process memory. Reads and writes exchange
// clones so callers can never mutate stored state through a shared pointer.
type OrderRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domorder.Order
	byKey map[string]string // idempotency key -> order id
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		byID:  make(map[string]*domorder.Order),
		byKey: make(map[string]string),
	}
}

func (r *OrderRepository) Insert(_ context.Context, o *domorder.Order) error {
	if o == nil || o.ID == "" {
		return errOrderIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byID[o.ID]; taken {
		return domorder.ErrConflict
	}
	if o.IdempotencyKey != "" {
		if prior, seen := r.byKey[o.IdempotencyKey]; seen {
			if _, alive := r.byID[prior]; alive {
				return domorder.ErrConflict
			}
		}
	}

	r.store(o)
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id string) (*domorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if o, ok := r.byID[id]; ok {
		return o.Clone(), nil
	}
	return nil, domorder.ErrNotFound
}

func (r *OrderRepository) Update(_ context.Context, o *domorder.Order) error {
	if o == nil || o.ID == "" {
		return errOrderIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[o.ID]; !ok {
		return domorder.ErrNotFound
	}
	r.store(o)
	return nil
}

func (r *OrderRepository) FindByIdempotency(_ context.Context, key string) (*domorder.Order, error) {
	if key == "" {
		return nil, domorder.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	o, ok := r.byID[id]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	return o.Clone(), nil
}

// store must be called with the write lock held.
func (r *OrderRepository) store(o *domorder.Order) {
	r.byID[o.ID] = o.Clone()
	if o.IdempotencyKey != "" {
		r.byKey[o.IdempotencyKey] = o.ID
	}
}
