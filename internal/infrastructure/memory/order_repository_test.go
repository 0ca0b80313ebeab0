package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tiendago/storefront/internal/domain/money"
	domain "github.com/tiendago/storefront/internal/domain/order"
)

func newOrder(t *testing.T, id, key string) *domain.Order {
	t.Helper()
	o, err := domain.New(id, "prod-1", 1, money.MustNew(100000, "COP"), domain.ShippingInfo{}, "ana@example.com", key)
	if err != nil {
		t.Fatalf("order.New() error = %v", err)
	}
	return o
}

func TestOrderRepositoryInsertAndGet(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newOrder(t, "ord-1", "")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.Get(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "ord-1" || got.Status != domain.StatusPending {
		t.Fatalf("Get() = %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOrderRepositoryInsertConflict(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newOrder(t, "ord-1", "key-1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.Insert(ctx, newOrder(t, "ord-1", "")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate id Insert() error = %v, want ErrConflict", err)
	}
	if err := repo.Insert(ctx, newOrder(t, "ord-2", "key-1")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate idempotency key Insert() error = %v, want ErrConflict", err)
	}
}

func TestOrderRepositoryUpdate(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	ord := newOrder(t, "ord-1", "")
	if err := repo.Insert(ctx, ord); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := ord.Approve("txn-1", "ref-1"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := repo.Update(ctx, ord); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.Get(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != domain.StatusApproved || got.GatewayTransactionID != "txn-1" {
		t.Fatalf("Get() after update = %+v", got)
	}

	if err := repo.Update(ctx, newOrder(t, "missing", "")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOrderRepositoryClonesOnReadAndWrite(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	ord := newOrder(t, "ord-1", "")
	if err := repo.Insert(ctx, ord); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// mutating either side must not leak through
	ord.ErrorMessage = "caller mutation"
	got, err := repo.Get(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ErrorMessage != "" {
		t.Fatal("caller mutation leaked into stored order")
	}

	got.ErrorMessage = "reader mutation"
	again, err := repo.Get(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.ErrorMessage != "" {
		t.Fatal("reader mutation leaked into stored order")
	}
}

func TestOrderRepositoryFindByIdempotency(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newOrder(t, "ord-1", "key-1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.FindByIdempotency(ctx, "key-1")
	if err != nil {
		t.Fatalf("FindByIdempotency() error = %v", err)
	}
	if got.ID != "ord-1" {
		t.Fatalf("FindByIdempotency() = %q, want ord-1", got.ID)
	}

	if _, err := repo.FindByIdempotency(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindByIdempotency(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.FindByIdempotency(ctx, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindByIdempotency(\"\") error = %v, want ErrNotFound", err)
	}
}
