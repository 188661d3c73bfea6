package invoice

import (
	"sort"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
	"github.com/shopspring/decimal"
)

type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	HSNCode   string          `json:"hsn_code,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Taxable   decimal.Decimal `json:"taxable_value"`
	Rate      decimal.Decimal `json:"tax_rate"`
	Tax       decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"line_total"`
}

// RateGroup sums the lines that share one tax rate.
type RateGroup struct {
	Rate    decimal.Decimal `json:"tax_rate"`
	Taxable decimal.Decimal `json:"taxable_value"`
	Tax     decimal.Decimal `json:"tax_amount"`
}

type Invoice struct {
	Number        string          `json:"invoice_number"`
	Date          time.Time       `json:"invoice_date"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	PaymentMethod string          `json:"payment_method"`
	ShipTo        *orders.Address `json:"shipping_address,omitempty"`
	Lines         []Line          `json:"items"`
	Breakdown     []RateGroup     `json:"tax_breakdown"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	Shipping      decimal.Decimal `json:"shipping_fee"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// Policy charges FlatFee when the subtotal is below FreeThreshold.
type Policy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

func (p Policy) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(p.FreeThreshold) {
		return p.FlatFee
	}
	return decimal.Zero
}

// Number is <prefix>-<yyyymmdd>-<first 8 hex digits of the order id>.
func Number(prefix string, o *orders.Order) string {
	id := strings.ToUpper(strings.ReplaceAll(o.ID, "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	return prefix + "-" + o.CreatedAt.UTC().Format("20060102") + "-" + id
}

// Build derives the invoice from an order and the tax resolution of each of
// its products. It does not modify its inputs and returns equal invoices for
// equal inputs. Products missing from rates are taxed at 0%.
func Build(o *orders.Order, rates map[string]tax.Resolution, policy Policy, prefix string) Invoice {
	inv := Invoice{
		Number:        Number(prefix, o),
		Date:          o.CreatedAt.UTC(),
		OrderID:       o.ID,
		UserID:        o.UserID,
		PaymentMethod: o.PaymentMethod,
		Lines:         make([]Line, 0, len(o.Items)),
		Breakdown:     []RateGroup{},
		Subtotal:      decimal.Zero,
		TotalTax:      decimal.Zero,
	}
	if o.Address != nil {
		addr := *o.Address
		inv.ShipTo = &addr
	}

	groups := map[string]*RateGroup{}
	for _, it := range o.Items {
		res, ok := rates[it.ProductID]
		if !ok {
			res = tax.Resolution{Rate: decimal.Zero, Source: tax.SourceNone}
		}
		taxable := it.Subtotal().Round(2)
		amount := tax.Amount(taxable, res.Rate)
		inv.Lines = append(inv.Lines, Line{
			ProductID: it.ProductID,
			Name:      it.Name,
			HSNCode:   res.HSNCode,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Taxable:   taxable,
			Rate:      res.Rate,
			Tax:       amount,
			Total:     taxable.Add(amount),
		})

		key := res.Rate.StringFixed(2)
		g, ok := groups[key]
		if !ok {
			g = &RateGroup{Rate: res.Rate, Taxable: decimal.Zero, Tax: decimal.Zero}
			groups[key] = g
		}
		g.Taxable = g.Taxable.Add(taxable)
		g.Tax = g.Tax.Add(amount)

		inv.Subtotal = inv.Subtotal.Add(taxable)
		inv.TotalTax = inv.TotalTax.Add(amount)
	}

	for _, g := range groups {
		inv.Breakdown = append(inv.Breakdown, *g)
	}
	sort.Slice(inv.Breakdown, func(i, j int) bool {
		return inv.Breakdown[i].Rate.LessThan(inv.Breakdown[j].Rate)
	})

	inv.Shipping = policy.Fee(inv.Subtotal)
	inv.GrandTotal = inv.Subtotal.Add(inv.TotalTax).Add(inv.Shipping)
	return inv
}
