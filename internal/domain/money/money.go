package money

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeAmount    = errors.New("money: amount must be zero or greater")
	ErrCurrencyRequired  = errors.New("money: currency is required")
	ErrCurrencyMismatch  = errors.New("money: currency mismatch")
	ErrInvalidMultiplier = errors.New("money: multiplier must be greater than zero")
)

// Money is an immutable amount in the currency's minor unit (cents for COP/USD).
// Integer minor units keep the arithmetic exact; the gateway consumes cents anyway.
type Money struct {
	amountInCents int64
	currency      string
}

func New(amountInCents int64, currency string) (Money, error) {
	if amountInCents < 0 {
		return Money{}, ErrNegativeAmount
	}
	if currency == "" {
		return Money{}, ErrCurrencyRequired
	}
	return Money{amountInCents: amountInCents, currency: currency}, nil
}

// MustNew is for literals in wiring and tests where the inputs are known valid.
func MustNew(amountInCents int64, currency string) Money {
	m, err := New(amountInCents, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) AmountInCents() int64 { return m.amountInCents }
func (m Money) Currency() string     { return m.currency }
func (m Money) IsZero() bool         { return m.amountInCents == 0 && m.currency == "" }

// Multiply scales the amount by a positive quantity, keeping the currency.
func (m Money) Multiply(quantity int) (Money, error) {
	if quantity <= 0 {
		return Money{}, ErrInvalidMultiplier
	}
	return Money{
		amountInCents: m.amountInCents * int64(quantity),
		currency:      m.currency,
	}, nil
}

// Add combines two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{
		amountInCents: m.amountInCents + other.amountInCents,
		currency:      m.currency,
	}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amountInCents == other.amountInCents && m.currency == other.currency
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amountInCents, m.currency)
}
