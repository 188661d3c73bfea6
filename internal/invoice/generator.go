package invoice

import (
	"context"

	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
)

type OrderReader interface {
	GetOrder(ctx context.Context, actor auth.Actor, orderID string) (*orders.Order, error)
}

type RateResolver interface {
	ForProducts(ctx context.Context, productIDs []string) map[string]tax.Resolution
}

// Generator loads an order the actor may see and builds its invoice with the
// products' current tax classification.
type Generator struct {
	Orders OrderReader
	Rates  RateResolver
	Policy Policy
	Prefix string
}

func (g *Generator) ForOrder(ctx context.Context, actor auth.Actor, orderID string) (Invoice, error) {
	o, err := g.Orders.GetOrder(ctx, actor, orderID)
	if err != nil {
		return Invoice{}, err
	}
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	var rates map[string]tax.Resolution
	if len(ids) > 0 {
		rates = g.Rates.ForProducts(ctx, ids)
	}
	return Build(o, rates, g.Policy, g.Prefix), nil
}
