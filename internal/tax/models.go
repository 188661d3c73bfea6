package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

type GSTRate struct {
	ID          string          `json:"rate_id"`
	Name        string          `json:"rate_name"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type HSNCode struct {
	ID            string              `json:"hsn_id"`
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	DefaultRateID *string             `json:"default_gst_rate_id"`
	RateName      *string             `json:"rate_name,omitempty"`
	Percentage    decimal.NullDecimal `json:"percentage"`
	CreatedAt     time.Time           `json:"created_at"`
}

// HSNRef is the part of an HSN code the resolver needs.
type HSNRef struct {
	Code string
	Rate decimal.NullDecimal
}

// Classification is the tax data reachable from a product: its own HSN code
// and its category's default HSN code. Either may be nil.
type Classification struct {
	Product  *HSNRef
	Category *HSNRef
}

type Source string

const (
	SourceProduct  Source = "product"
	SourceCategory Source = "category"
	SourceNone     Source = "none"
)

// Resolution is the effective GST rate of one product.
type Resolution struct {
	Rate    decimal.Decimal `json:"tax_rate"`
	HSNCode string          `json:"hsn_code,omitempty"`
	Source  Source          `json:"source"`
}
