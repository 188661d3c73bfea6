package orders

import "context"

// Store is the persistence the coordinator needs outside a transaction.
type Store interface {
	Address(ctx context.Context, id string) (*Address, error)
	// Order returns the order with its items and shipping address.
	Order(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, p Page) ([]Order, error)
	ListAll(ctx context.Context, p Page) ([]Order, error)
	// SetStatus moves the order to status to. With a non-empty from it only
	// succeeds while the current status is one of them and reports false
	// otherwise.
	SetStatus(ctx context.Context, id string, to Status, from ...Status) (bool, error)
	// InTx runs fn atomically; an error from fn discards all its writes.
	InTx(ctx context.Context, fn func(Tx) error) error
}

type Tx interface {
	// CartLines locks the user's cart rows and prices them at the current
	// product price, ordered by product id.
	CartLines(ctx context.Context, userID string) ([]Line, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, it *OrderItem) error
	ReduceInventory(ctx context.Context, productID string, qty int) error
	RestoreInventory(ctx context.Context, productID string, qty int) error
	ClearCart(ctx context.Context, userID string) error
}

// Publisher emits order events; delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, topic string, env Envelope)
}

type CachedStatus struct {
	Status Status `json:"status"`
	UserID string `json:"user_id"`
}

// StatusCache holds the last known status per order. Writers Set after every
// committed change; readers only Fill, which never replaces an existing entry.
type StatusCache interface {
	Get(ctx context.Context, orderID string) (CachedStatus, bool)
	Set(ctx context.Context, orderID string, s CachedStatus)
	Fill(ctx context.Context, orderID string, s CachedStatus)
}
