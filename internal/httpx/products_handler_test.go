package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string]catalog.Product

func (f fakeCatalog) List(context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f {
		out = append(out, p)
	}
	return out, nil
}

func (f fakeCatalog) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	return &p, nil
}

type fakeProductTax map[string]tax.Resolution

func (f fakeProductTax) ForProduct(_ context.Context, id string) tax.Resolution {
	if r, ok := f[id]; ok {
		return r
	}
	return tax.Resolution{Rate: decimal.Zero, Source: tax.SourceNone}
}

func newProductsAPI() http.Handler {
	return newTestAPI(&ProductsHandler{
		Catalog: fakeCatalog{"A": {ID: "A", Name: "Ashwagandha", Price: decimal.RequireFromString("100.00"), Quantity: 5}},
		Tax:     fakeProductTax{"A": {Rate: decimal.NewFromInt(18), HSNCode: "3004", Source: tax.SourceCategory}},
	})
}

func TestProducts_Tax(t *testing.T) {
	h := newProductsAPI()

	rec := do(t, h, alice, http.MethodGet, "/products/A/tax", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"product_id":"A","tax_rate":"18","hsn_code":"3004","source":"category"}`, rec.Body.String())

	rec = do(t, h, alice, http.MethodGet, "/products/Z/tax", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_PriceWithTax(t *testing.T) {
	h := newProductsAPI()

	rec := do(t, h, alice, http.MethodGet, "/products/A/price-with-tax?quantity=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"product_id":"A","hsn_code":"3004","unit_price":"100","quantity":2,
		"taxable_value":"200","tax_rate":"18","tax_amount":"36","total":"236"
	}`, rec.Body.String())

	rec = do(t, h, alice, http.MethodGet, "/products/A/price-with-tax", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":1`)

	rec = do(t, h, alice, http.MethodGet, "/products/A/price-with-tax?quantity=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, alice, http.MethodGet, "/products/A/price-with-tax?quantity=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_List(t *testing.T) {
	rec := do(t, newProductsAPI(), alice, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ashwagandha")
}
