package checkout

// IDGenerator produces opaque unique identifiers for new orders.
type IDGenerator interface {
	NewID() string
}
