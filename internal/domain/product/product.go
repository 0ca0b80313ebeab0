package product

import (
	"errors"
	"time"

	"github.com/tiendago/storefront/internal/domain/money"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInvalidQuantity   = errors.New("product: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product is the catalog entry plus its stock ledger. Stock only changes
// through DecreaseStock/IncreaseStock so the non-negative invariant holds.
type Product struct {
	ID          string
	Name        string
	Price       money.Money
	Stock       int
	Category    string
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(id, name string, price money.Money, stock int) (*Product, error) {
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasStock reports whether quantity units can be sold right now.
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

func (p *Product) IsAvailable() bool {
	return p.Stock > 0
}

// TotalPrice is the unit price scaled by quantity, same currency.
func (p *Product) TotalPrice(quantity int) (money.Money, error) {
	if quantity <= 0 {
		return money.Money{}, ErrInvalidQuantity
	}
	return p.Price.Multiply(quantity)
}

// DecreaseStock is the authority check for selling: it fails without touching
// stock when quantity exceeds what is on hand.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// IncreaseStock restores units, e.g. restock or a released reservation.
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
