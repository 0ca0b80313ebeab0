package order

import "time"

// OrderCreatedEvent is emitted when a new purchase attempt is persisted.
type OrderCreatedEvent struct {
	OrderID       string
	ProductID     string
	Quantity      int
	AmountInCents int64
	Currency      string
	CustomerEmail string
	OccurredAt    time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		AmountInCents: o.Total.AmountInCents(),
		Currency:      o.Total.Currency(),
		CustomerEmail: o.CustomerEmail,
		OccurredAt:    time.Now().UTC(),
	}
}

// OrderApprovedEvent is emitted after the gateway approved the payment and the
// stock decrement committed.
type OrderApprovedEvent struct {
	OrderID              string
	ProductID            string
	GatewayTransactionID string
	OccurredAt           time.Time
}

func (OrderApprovedEvent) EventName() string { return "order.approved" }

func NewOrderApprovedEvent(o *Order) OrderApprovedEvent {
	return OrderApprovedEvent{
		OrderID:              o.ID,
		ProductID:            o.ProductID,
		GatewayTransactionID: o.GatewayTransactionID,
		OccurredAt:           time.Now().UTC(),
	}
}

// OrderDeclinedEvent is emitted when the gateway refused the payment.
type OrderDeclinedEvent struct {
	OrderID    string
	Reason     string
	OccurredAt time.Time
}

func (OrderDeclinedEvent) EventName() string { return "order.declined" }

func NewOrderDeclinedEvent(o *Order) OrderDeclinedEvent {
	return OrderDeclinedEvent{
		OrderID:    o.ID,
		Reason:     o.ErrorMessage,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderErroredEvent is emitted when payment processing failed outside the
// gateway's decline path.
type OrderErroredEvent struct {
	OrderID    string
	Reason     string
	OccurredAt time.Time
}

func (OrderErroredEvent) EventName() string { return "order.errored" }

func NewOrderErroredEvent(o *Order) OrderErroredEvent {
	return OrderErroredEvent{
		OrderID:    o.ID,
		Reason:     o.ErrorMessage,
		OccurredAt: time.Now().UTC(),
	}
}
