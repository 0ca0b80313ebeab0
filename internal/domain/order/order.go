package order

import (
	"errors"
	"time"

	"github.com/tiendago/storefront/internal/domain/money"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrConflict               = errors.New("order: already exists")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrEmailRequired          = errors.New("order: customer email is required")
	ErrNotPending             = errors.New("order: not in PENDING state")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
	StatusError    Status = "ERROR"
)

// ShippingInfo is the customer-facing delivery data captured at checkout.
type ShippingInfo struct {
	FirstName  string
	LastName   string
	Address    string
	City       string
	PostalCode string
}

// Order is one purchase attempt. Total is computed from the product price at
// creation time and never changes afterwards, even if the product price does.
type Order struct {
	ID                   string
	ProductID            string
	Quantity             int
	Total                money.Money
	Shipping             ShippingInfo
	CustomerEmail        string
	IdempotencyKey       string
	Status               Status
	GatewayTransactionID string
	GatewayReference     string
	ErrorMessage         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func New(id, productID string, quantity int, total money.Money, shipping ShippingInfo, customerEmail, idempotencyKey string) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if customerEmail == "" {
		return nil, ErrEmailRequired
	}

	now := time.Now().UTC()
	return &Order{
		ID:             id,
		ProductID:      productID,
		Quantity:       quantity,
		Total:          total,
		Shipping:       shipping,
		CustomerEmail:  customerEmail,
		IdempotencyKey: idempotencyKey,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Approve records the gateway identifiers and moves the order to APPROVED.
func (o *Order) Approve(gatewayTransactionID, gatewayReference string) error {
	next, err := o.state().OnApproved(o, gatewayTransactionID, gatewayReference)
	if err != nil {
		return err
	}
	o.Status = next.Status()
	o.touch()
	return nil
}

// Decline records the gateway's refusal and moves the order to DECLINED.
func (o *Order) Decline(reason string) error {
	next, err := o.state().OnDeclined(o, reason)
	if err != nil {
		return err
	}
	o.Status = next.Status()
	o.touch()
	return nil
}

// MarkAsError records a processing failure and moves the order to ERROR.
func (o *Order) MarkAsError(reason string) error {
	next, err := o.state().OnErrored(o, reason)
	if err != nil {
		return err
	}
	o.Status = next.Status()
	o.touch()
	return nil
}

func (o *Order) IsPending() bool  { return o.Status == StatusPending }
func (o *Order) IsApproved() bool { return o.Status == StatusApproved }

// IsFinal reports whether the order reached a terminal status.
func (o *Order) IsFinal() bool {
	switch o.Status {
	case StatusApproved, StatusDeclined, StatusError:
		return true
	}
	return false
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
