package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a cart row priced at the current catalog price. SnapshotPrice is
// the price seen when the item was added and is display-only.
type Item struct {
	ID            string          `json:"cart_item_id"`
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"price"`
	SnapshotPrice decimal.Decimal `json:"snapshot_price"`
	Available     int             `json:"available"`
	AddedAt       time.Time       `json:"added_at"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	UserID   string          `json:"user_id"`
	Items    []Item          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func newCart(userID string, items []Item) *Cart {
	c := &Cart{UserID: userID, Items: items, Subtotal: decimal.Zero}
	if c.Items == nil {
		c.Items = []Item{}
	}
	for _, it := range c.Items {
		c.Subtotal = c.Subtotal.Add(it.LineTotal())
	}
	c.Subtotal = c.Subtotal.Round(2)
	return c
}

type UpdateResult struct {
	Item    *Item `json:"item,omitempty"`
	Removed bool  `json:"removed"`
}
