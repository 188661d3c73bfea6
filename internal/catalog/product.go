package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         string          `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	HSNCodeID  *string         `json:"hsn_code_id,omitempty"`
	CategoryID *string         `json:"category_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// InStock reports whether qty units can be taken right now. Checkout still
// relies on the conditional decrement, this is only an early rejection.
func (p Product) InStock(qty int) bool { return qty > 0 && p.Quantity >= qty }
