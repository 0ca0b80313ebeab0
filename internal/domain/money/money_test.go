package money

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		wantErr  error
	}{
		{name: "valid", amount: 100000, currency: "COP"},
		{name: "zero amount", amount: 0, currency: "USD"},
		{name: "negative amount", amount: -1, currency: "COP", wantErr: ErrNegativeAmount},
		{name: "missing currency", amount: 100, currency: "", wantErr: ErrCurrencyRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.amount, tt.currency)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if m.AmountInCents() != tt.amount || m.Currency() != tt.currency {
				t.Fatalf("New() = %v, want %d %s", m, tt.amount, tt.currency)
			}
		})
	}
}

func TestMultiply(t *testing.T) {
	price := MustNew(100000, "COP")

	total, err := price.Multiply(2)
	if err != nil {
		t.Fatalf("Multiply() error = %v", err)
	}
	if total.AmountInCents() != 200000 {
		t.Fatalf("Multiply() amount = %d, want 200000", total.AmountInCents())
	}
	if total.Currency() != "COP" {
		t.Fatalf("Multiply() currency = %s, want COP", total.Currency())
	}

	// original is untouched
	if price.AmountInCents() != 100000 {
		t.Fatalf("Multiply() mutated receiver: %d", price.AmountInCents())
	}

	if _, err := price.Multiply(0); !errors.Is(err, ErrInvalidMultiplier) {
		t.Fatalf("Multiply(0) error = %v, want ErrInvalidMultiplier", err)
	}
	if _, err := price.Multiply(-3); !errors.Is(err, ErrInvalidMultiplier) {
		t.Fatalf("Multiply(-3) error = %v, want ErrInvalidMultiplier", err)
	}
}

func TestAdd(t *testing.T) {
	a := MustNew(1500, "USD")
	b := MustNew(2500, "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if sum.AmountInCents() != 4000 || sum.Currency() != "USD" {
		t.Fatalf("Add() = %v, want 4000 USD", sum)
	}

	c := MustNew(100, "COP")
	if _, err := a.Add(c); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("Add() with mixed currencies error = %v, want ErrCurrencyMismatch", err)
	}
}

func TestZeroValue(t *testing.T) {
	var zero Money
	if !zero.IsZero() {
		t.Fatal("zero value not reported as zero")
	}
	if MustNew(0, "COP").IsZero() {
		t.Fatal("zero amount with currency reported as zero value")
	}
}

func TestString(t *testing.T) {
	if got := MustNew(350000, "COP").String(); got != "350000 COP" {
		t.Fatalf("String() = %q, want \"350000 COP\"", got)
	}
}

func TestEquals(t *testing.T) {
	if !MustNew(100, "COP").Equals(MustNew(100, "COP")) {
		t.Fatal("equal values reported unequal")
	}
	if MustNew(100, "COP").Equals(MustNew(100, "USD")) {
		t.Fatal("different currencies reported equal")
	}
	if MustNew(100, "COP").Equals(MustNew(101, "COP")) {
		t.Fatal("different amounts reported equal")
	}
}
