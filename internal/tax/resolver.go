package tax

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolve picks the product's own HSN rate, then the category default, then 0%.
func Resolve(c Classification) Resolution {
	if c.Product != nil && c.Product.Rate.Valid {
		return Resolution{Rate: c.Product.Rate.Decimal.Round(2), HSNCode: c.Product.Code, Source: SourceProduct}
	}
	if c.Category != nil && c.Category.Rate.Valid {
		return Resolution{Rate: c.Category.Rate.Decimal.Round(2), HSNCode: c.Category.Code, Source: SourceCategory}
	}

	res := Resolution{Rate: decimal.Zero, Source: SourceNone}
	switch {
	case c.Product != nil:
		res.HSNCode = c.Product.Code
	case c.Category != nil:
		res.HSNCode = c.Category.Code
	}
	return res
}

// Amount is round(taxable * rate / 100, 2), half away from zero.
func Amount(taxable, rate decimal.Decimal) decimal.Decimal {
	return taxable.Mul(rate).Shift(-2).Round(2)
}

type Quote struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Taxable   decimal.Decimal `json:"taxable_value"`
	Rate      decimal.Decimal `json:"tax_rate"`
	Tax       decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

func PriceWithTax(unitPrice decimal.Decimal, qty int, rate decimal.Decimal) Quote {
	taxable := unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
	amount := Amount(taxable, rate)
	return Quote{
		UnitPrice: unitPrice,
		Quantity:  qty,
		Taxable:   taxable,
		Rate:      rate,
		Tax:       amount,
		Total:     taxable.Add(amount),
	}
}

type ClassificationSource interface {
	Classifications(ctx context.Context, productIDs []string) (map[string]Classification, error)
}

// Resolver never fails: a lookup error degrades to 0% so tax data problems
// cannot block a sale.
type Resolver struct {
	Source ClassificationSource
}

func (r *Resolver) ForProduct(ctx context.Context, productID string) Resolution {
	return r.ForProducts(ctx, []string{productID})[productID]
}

func (r *Resolver) ForProducts(ctx context.Context, productIDs []string) map[string]Resolution {
	out := make(map[string]Resolution, len(productIDs))
	classes, err := r.Source.Classifications(ctx, productIDs)
	if err != nil {
		log.Printf("tax: classification lookup failed, using 0%%: %v", err)
		classes = nil
	}
	for _, id := range productIDs {
		out[id] = Resolve(classes[id])
	}
	return out
}

// ValidPercentage reports whether p is a usable GST percentage.
func ValidPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
