package order

// OrderState implements the state pattern for the payment lifecycle.
// PENDING is the only state that accepts transitions; APPROVED, DECLINED and
// ERROR are terminal.
type OrderState interface {
	Status() Status
	OnApproved(o *Order, gatewayTransactionID, gatewayReference string) (OrderState, error)
	OnDeclined(o *Order, reason string) (OrderState, error)
	OnErrored(o *Order, reason string) (OrderState, error)
}

func (o *Order) state() OrderState {
	switch o.Status {
	case StatusApproved:
		return approvedState{}
	case StatusDeclined:
		return declinedState{}
	case StatusError:
		return errorState{}
	default:
		return pendingState{}
	}
}

type pendingState struct{}

func (pendingState) Status() Status { return StatusPending }

func (pendingState) OnApproved(o *Order, gatewayTransactionID, gatewayReference string) (OrderState, error) {
	o.GatewayTransactionID = gatewayTransactionID
	o.GatewayReference = gatewayReference
	o.ErrorMessage = ""
	return approvedState{}, nil
}

func (pendingState) OnDeclined(o *Order, reason string) (OrderState, error) {
	o.ErrorMessage = reason
	return declinedState{}, nil
}

func (pendingState) OnErrored(o *Order, reason string) (OrderState, error) {
	o.ErrorMessage = reason
	return errorState{}, nil
}

type approvedState struct{}

func (approvedState) Status() Status { return StatusApproved }

func (approvedState) OnApproved(*Order, string, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (approvedState) OnDeclined(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (approvedState) OnErrored(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type declinedState struct{}

func (declinedState) Status() Status { return StatusDeclined }

func (declinedState) OnApproved(*Order, string, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (declinedState) OnDeclined(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (declinedState) OnErrored(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type errorState struct{}

func (errorState) Status() Status { return StatusError }

func (errorState) OnApproved(*Order, string, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (errorState) OnDeclined(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (errorState) OnErrored(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}
