package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	AddressID     string          `json:"address_id"`
	PaymentMethod string          `json:"payment_method"`
	Items         []ItemPrice     `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PlacedAt      time.Time       `json:"placed_at"`
}

type OrderCancelledPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	CancelledBy   string `json:"cancelled_by"`
	RestockFailed bool   `json:"restock_failed"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	By      string `json:"by"`
}

func placedPayload(o *Order) OrderPlacedPayload {
	items := make([]ItemPrice, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemPrice{ProductID: it.ProductID, Qty: it.Quantity, Price: it.Price}
	}
	return OrderPlacedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		AddressID:     o.AddressID,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
		TotalPrice:    o.TotalPrice,
		PlacedAt:      o.CreatedAt,
	}
}
