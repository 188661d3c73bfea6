package invoice

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var policy = Policy{FreeThreshold: d("500.00"), FlatFee: d("40.00")}

func sampleOrder() *orders.Order {
	return &orders.Order{
		ID:            "3f2a9c1e-7b4d-4e21-9a0b-1c2d3e4f5a6b",
		UserID:        "alice",
		AddressID:     "addr-1",
		TotalPrice:    d("250.00"),
		Status:        orders.StatusPending,
		PaymentMethod: orders.DefaultPaymentMethod,
		CreatedAt:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Items: []orders.OrderItem{
			{ID: "i-1", ProductID: "A", Name: "Ashwagandha", Quantity: 2, Price: d("100.00")},
			{ID: "i-2", ProductID: "B", Name: "Brahmi", Quantity: 1, Price: d("50.00")},
		},
		Address: &orders.Address{ID: "addr-1", UserID: "alice", AddressLine: "1 Main Road", City: "Mysuru"},
	}
}

func sampleRates() map[string]tax.Resolution {
	return map[string]tax.Resolution{
		"A": {Rate: d("18"), HSNCode: "3004", Source: tax.SourceProduct},
		"B": {Rate: decimal.Zero, Source: tax.SourceNone},
	}
}

func TestBuild_Scenario(t *testing.T) {
	inv := Build(sampleOrder(), sampleRates(), policy, "INV")

	assert.Equal(t, "INV-20240315-3F2A9C1E", inv.Number)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), inv.Date)
	require.Len(t, inv.Lines, 2)

	a := inv.Lines[0]
	assert.Equal(t, "200.00", a.Taxable.StringFixed(2))
	assert.Equal(t, "36.00", a.Tax.StringFixed(2))
	assert.Equal(t, "236.00", a.Total.StringFixed(2))
	assert.Equal(t, "3004", a.HSNCode)

	b := inv.Lines[1]
	assert.True(t, b.Tax.IsZero())
	assert.Equal(t, "50.00", b.Total.StringFixed(2))

	assert.Equal(t, "250.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", inv.TotalTax.StringFixed(2))
	assert.Equal(t, "40.00", inv.Shipping.StringFixed(2))
	assert.Equal(t, "326.00", inv.GrandTotal.StringFixed(2))

	require.Len(t, inv.Breakdown, 2)
	assert.True(t, inv.Breakdown[0].Rate.IsZero())
	assert.Equal(t, "50.00", inv.Breakdown[0].Taxable.StringFixed(2))
	assert.Equal(t, "18.00", inv.Breakdown[1].Rate.StringFixed(2))
	assert.Equal(t, "36.00", inv.Breakdown[1].Tax.StringFixed(2))
}

func TestBuild_Idempotent(t *testing.T) {
	o := sampleOrder()
	rates := sampleRates()

	first := Build(o, rates, policy, "INV")
	second := Build(o, rates, policy, "INV")

	assert.Equal(t, first, second)
	assert.Equal(t, sampleOrder(), o)

	first.ShipTo.City = "changed"
	assert.Equal(t, "Mysuru", o.Address.City)
}

func TestBuild_GroupsByRate(t *testing.T) {
	o := sampleOrder()
	o.Items = append(o.Items, orders.OrderItem{ProductID: "C", Quantity: 3, Price: d("10.10")})
	rates := sampleRates()
	rates["C"] = tax.Resolution{Rate: d("18"), Source: tax.SourceCategory}

	inv := Build(o, rates, policy, "INV")

	require.Len(t, inv.Breakdown, 2)
	assert.Equal(t, "230.30", inv.Breakdown[1].Taxable.StringFixed(2))
	// 36.00 + round(30.30 * 18%) = 36.00 + 5.45
	assert.Equal(t, "41.45", inv.Breakdown[1].Tax.StringFixed(2))
}

func TestBuild_MissingRateIsZero(t *testing.T) {
	inv := Build(sampleOrder(), nil, policy, "INV")

	assert.True(t, inv.TotalTax.IsZero())
	require.Len(t, inv.Breakdown, 1)
	assert.Equal(t, "250.00", inv.Breakdown[0].Taxable.StringFixed(2))
}

func TestPolicy_Fee(t *testing.T) {
	assert.Equal(t, "40", policy.Fee(d("499.99")).String())
	assert.True(t, policy.Fee(d("500.00")).IsZero())
	assert.True(t, policy.Fee(d("1200")).IsZero())
}

func TestNumber_ShortID(t *testing.T) {
	o := &orders.Order{ID: "ab12", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "TF-20250102-AB12", Number("TF", o))
}

type stubOrders struct {
	order *orders.Order
}

func (s stubOrders) GetOrder(_ context.Context, actor auth.Actor, id string) (*orders.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	if !actor.CanAccess(s.order.UserID) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to view this order")
	}
	return s.order, nil
}

type stubRates map[string]tax.Resolution

func (s stubRates) ForProducts(_ context.Context, ids []string) map[string]tax.Resolution {
	out := map[string]tax.Resolution{}
	for _, id := range ids {
		if r, ok := s[id]; ok {
			out[id] = r
		}
	}
	return out
}

func TestGenerator_ForOrder(t *testing.T) {
	o := sampleOrder()
	g := &Generator{Orders: stubOrders{order: o}, Rates: stubRates(sampleRates()), Policy: policy, Prefix: "INV"}

	inv, err := g.ForOrder(context.Background(), auth.Actor{UserID: "alice", Role: auth.RoleCustomer}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "326.00", inv.GrandTotal.StringFixed(2))

	_, err = g.ForOrder(context.Background(), auth.Actor{UserID: "bob", Role: auth.RoleCustomer}, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = g.ForOrder(context.Background(), auth.Actor{UserID: "alice"}, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRenderPDF(t *testing.T) {
	inv := Build(sampleOrder(), sampleRates(), policy, "INV")
	seller := Seller{Name: "Test Foods", Address: []string{"1 Main Road"}, Email: "a@b.c", GSTIN: "29ABCDE1234F1Z5"}

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, inv, seller))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderPDF_TranslatesNonASCII(t *testing.T) {
	o := sampleOrder()
	o.Items[0].Name = "Ginger – Dry"
	o.Address.City = "Besançon"
	inv := Build(o, sampleRates(), policy, "INV")

	var buf bytes.Buffer
	require.NoError(t, renderPDF(&buf, inv, Seller{Name: "Café Foods"}, false))
	out := buf.Bytes()

	assert.Contains(t, string(out), "Ginger \x96 Dry")
	assert.Contains(t, string(out), "Besan\xe7on")
	assert.Contains(t, string(out), "Caf\xe9 Foods")
	assert.NotContains(t, string(out), "–")
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "Mysuru, 570001", joinNonEmpty(", ", "Mysuru", "", "570001"))
	assert.Equal(t, "", joinNonEmpty(", ", "", ""))
}
