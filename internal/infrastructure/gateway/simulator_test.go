package gateway

import (
	"context"
	"testing"

	dompayment "github.com/tiendago/storefront/internal/domain/payment"
)

func simRequest() dompayment.Request {
	return dompayment.Request{
		AmountInCents: 200000,
		Currency:      "COP",
		CustomerEmail: "ana@example.com",
		Reference:     "ord-1",
		Method:        dompayment.Method{Type: "CARD", Token: "tok-1"},
	}
}

func TestSimulatorRateBands(t *testing.T) {
	tests := []struct {
		name        string
		approveRate float64
		declineRate float64
		want        dompayment.Status
	}{
		{"always approve", 1, 0, dompayment.StatusApproved},
		{"always decline", 0, 1, dompayment.StatusDeclined},
		{"always pending", 0, 0, dompayment.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSeededSimulator(42, tt.approveRate, tt.declineRate)
			for i := 0; i < 20; i++ {
				resp, err := sim.ProcessPayment(context.Background(), simRequest())
				if err != nil {
					t.Fatalf("ProcessPayment() error = %v", err)
				}
				if resp.Status != tt.want {
					t.Fatalf("status = %s, want %s", resp.Status, tt.want)
				}
			}
		})
	}
}

func TestSimulatorDeterministicSequence(t *testing.T) {
	a := NewSeededSimulator(7, 0.5, 0.3)
	b := NewSeededSimulator(7, 0.5, 0.3)

	for i := 0; i < 50; i++ {
		ra, err := a.ProcessPayment(context.Background(), simRequest())
		if err != nil {
			t.Fatalf("ProcessPayment() error = %v", err)
		}
		rb, err := b.ProcessPayment(context.Background(), simRequest())
		if err != nil {
			t.Fatalf("ProcessPayment() error = %v", err)
		}
		if ra.Status != rb.Status {
			t.Fatalf("draw %d diverged: %s vs %s", i, ra.Status, rb.Status)
		}
	}
}

func TestSimulatorResponseShape(t *testing.T) {
	sim := NewSeededSimulator(1, 1, 0)

	resp, err := sim.ProcessPayment(context.Background(), simRequest())
	if err != nil {
		t.Fatalf("ProcessPayment() error = %v", err)
	}
	if resp.ID == "" {
		t.Fatal("transaction id empty")
	}
	if resp.Reference != "ord-1" {
		t.Fatalf("reference = %q, want ord-1", resp.Reference)
	}
	if resp.AmountInCents != 200000 || resp.Currency != "COP" {
		t.Fatalf("amount = %d %s, want 200000 COP", resp.AmountInCents, resp.Currency)
	}
	if resp.FinalizedAt == nil {
		t.Fatal("approved response missing FinalizedAt")
	}
}

func TestSimulatorPendingNotFinalized(t *testing.T) {
	sim := NewSeededSimulator(1, 0, 0)

	resp, err := sim.ProcessPayment(context.Background(), simRequest())
	if err != nil {
		t.Fatalf("ProcessPayment() error = %v", err)
	}
	if resp.FinalizedAt != nil {
		t.Fatal("PENDING response has FinalizedAt set")
	}
}

func TestSimulatorRespectsCancellation(t *testing.T) {
	sim := NewSeededSimulator(1, 1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sim.ProcessPayment(ctx, simRequest()); err == nil {
		t.Fatal("ProcessPayment() with cancelled context returned nil error")
	}
}
