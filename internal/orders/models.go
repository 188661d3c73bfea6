package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	ID          string `json:"address_id"`
	UserID      string `json:"user_id"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
}

type Order struct {
	ID            string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	AddressID     string          `json:"address_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        Status          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `json:"items"`
	Address       *Address        `json:"shipping_address,omitempty"`
}

// OrderItem is immutable once written; Price is the unit price at purchase.
type OrderItem struct {
	ID        string          `json:"order_item_id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Line is a cart row priced inside the checkout transaction.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CancelResult struct {
	Order         *Order `json:"order"`
	RestockFailed bool   `json:"restock_failed"`
	Warning       string `json:"warning,omitempty"`
}

type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
