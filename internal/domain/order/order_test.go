package order

import (
	"errors"
	"testing"

	"github.com/tiendago/storefront/internal/domain/money"
)

func newPendingOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("ord-1", "prod-1", 2, money.MustNew(200000, "COP"), ShippingInfo{
		FirstName: "Ana",
		LastName:  "García",
		Address:   "Calle 1 #2-3",
		City:      "Bogotá",
	}, "ana@example.com", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestNew(t *testing.T) {
	o := newPendingOrder(t)

	if o.Status != StatusPending {
		t.Fatalf("status = %s, want PENDING", o.Status)
	}
	if o.Total.AmountInCents() != 200000 {
		t.Fatalf("total = %d, want 200000", o.Total.AmountInCents())
	}
	if o.CreatedAt.IsZero() || o.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestNewValidation(t *testing.T) {
	total := money.MustNew(100, "COP")

	if _, err := New("ord-1", "prod-1", 0, total, ShippingInfo{}, "a@b.co", ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("quantity 0 error = %v, want ErrInvalidQuantity", err)
	}
	if _, err := New("ord-1", "prod-1", 1, total, ShippingInfo{}, "", ""); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("empty email error = %v, want ErrEmailRequired", err)
	}
}

func TestApproveFromPending(t *testing.T) {
	o := newPendingOrder(t)

	if err := o.Approve("txn-123", "ref-abc"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if o.Status != StatusApproved || !o.IsApproved() {
		t.Fatalf("status = %s, want APPROVED", o.Status)
	}
	if o.GatewayTransactionID != "txn-123" || o.GatewayReference != "ref-abc" {
		t.Fatalf("gateway ids = %q/%q, want txn-123/ref-abc", o.GatewayTransactionID, o.GatewayReference)
	}
}

func TestDeclineFromPending(t *testing.T) {
	o := newPendingOrder(t)

	if err := o.Decline("Payment was declined by cardpay"); err != nil {
		t.Fatalf("Decline() error = %v", err)
	}
	if o.Status != StatusDeclined {
		t.Fatalf("status = %s, want DECLINED", o.Status)
	}
	if o.ErrorMessage != "Payment was declined by cardpay" {
		t.Fatalf("error message = %q", o.ErrorMessage)
	}
}

func TestMarkAsErrorFromPending(t *testing.T) {
	o := newPendingOrder(t)

	if err := o.MarkAsError("gateway timeout"); err != nil {
		t.Fatalf("MarkAsError() error = %v", err)
	}
	if o.Status != StatusError {
		t.Fatalf("status = %s, want ERROR", o.Status)
	}
	if o.ErrorMessage != "gateway timeout" {
		t.Fatalf("error message = %q", o.ErrorMessage)
	}
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	terminal := []struct {
		name    string
		prepare func(*Order)
	}{
		{"approved", func(o *Order) { _ = o.Approve("txn", "ref") }},
		{"declined", func(o *Order) { _ = o.Decline("no") }},
		{"errored", func(o *Order) { _ = o.MarkAsError("boom") }},
	}

	for _, ts := range terminal {
		t.Run(ts.name, func(t *testing.T) {
			o := newPendingOrder(t)
			ts.prepare(o)
			before := o.Status

			if err := o.Approve("txn-2", "ref-2"); !errors.Is(err, ErrInvalidStateTransition) {
				t.Fatalf("Approve() error = %v, want ErrInvalidStateTransition", err)
			}
			if err := o.Decline("again"); !errors.Is(err, ErrInvalidStateTransition) {
				t.Fatalf("Decline() error = %v, want ErrInvalidStateTransition", err)
			}
			if err := o.MarkAsError("again"); !errors.Is(err, ErrInvalidStateTransition) {
				t.Fatalf("MarkAsError() error = %v, want ErrInvalidStateTransition", err)
			}
			if o.Status != before {
				t.Fatalf("status changed from %s to %s on rejected transition", before, o.Status)
			}
		})
	}
}

func TestIsFinal(t *testing.T) {
	o := newPendingOrder(t)
	if o.IsFinal() {
		t.Fatal("PENDING reported final")
	}
	_ = o.Approve("txn", "ref")
	if !o.IsFinal() {
		t.Fatal("APPROVED not reported final")
	}
}

func TestTotalFrozenAfterTransition(t *testing.T) {
	o := newPendingOrder(t)
	want := o.Total

	_ = o.Approve("txn", "ref")
	if !o.Total.Equals(want) {
		t.Fatalf("total changed across transition: %v != %v", o.Total, want)
	}
}

func TestClone(t *testing.T) {
	o := newPendingOrder(t)
	c := o.Clone()

	c.Status = StatusApproved
	c.ErrorMessage = "mutated"
	if o.Status != StatusPending || o.ErrorMessage != "" {
		t.Fatal("clone mutation leaked into original")
	}

	var nilOrder *Order
	if nilOrder.Clone() != nil {
		t.Fatal("Clone() of nil = non-nil")
	}
}
