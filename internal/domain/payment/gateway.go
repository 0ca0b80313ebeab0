package payment

import (
	"context"
	"time"
)

// Status is the gateway's verdict on a payment submission. Values outside this
// set (e.g. VOIDED) can appear on the wire and are carried through untouched.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
	StatusPending  Status = "PENDING"
	StatusVoided   Status = "VOIDED"
	StatusError    Status = "ERROR"
)

// Method describes how the customer pays. Token is the tokenized card handle
// issued by the gateway's client-side SDK; Installments only applies to cards.
type Method struct {
	Type         string
	Token        string
	Installments int
}

// Request is one payment submission. Reference is our order id and is how the
// gateway's transaction is correlated back to the purchase.
type Request struct {
	AmountInCents int64
	Currency      string
	CustomerEmail string
	Reference     string
	Method        Method
}

// Response is the gateway's record of the transaction.
type Response struct {
	ID            string
	Status        Status
	Reference     string
	AmountInCents int64
	Currency      string
	PaymentMethod string
	CreatedAt     time.Time
	FinalizedAt   *time.Time
}

// Gateway is the outbound port to the card processor. Implementations own
// retries, signatures and transport concerns; callers only see the verdict.
type Gateway interface {
	ProcessPayment(ctx context.Context, req Request) (*Response, error)
}
