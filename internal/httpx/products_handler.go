package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
	"github.com/go-chi/chi/v5"
)

type ProductCatalog interface {
	List(ctx context.Context) ([]catalog.Product, error)
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

type ProductTax interface {
	ForProduct(ctx context.Context, productID string) tax.Resolution
}

type ProductsHandler struct {
	Catalog ProductCatalog
	Tax     ProductTax
}

type productTaxResp struct {
	ProductID string `json:"product_id"`
	tax.Resolution
}

type priceWithTaxResp struct {
	ProductID string `json:"product_id"`
	HSNCode   string `json:"hsn_code,omitempty"`
	tax.Quote
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}/tax", h.productTax)
	r.Get("/products/{id}/price-with-tax", h.priceWithTax)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) productTax(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productTaxResp{ProductID: p.ID, Resolution: h.Tax.ForProduct(ctx, p.ID)})
}

func (h *ProductsHandler) priceWithTax(w http.ResponseWriter, r *http.Request) {
	qty, err := parseQuantityString(r.URL.Query().Get("quantity"), 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if qty <= 0 {
		writeError(w, r, apperr.New(apperr.KindInvalidInput, "quantity must be positive"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := h.Tax.ForProduct(ctx, p.ID)
	writeJSON(w, http.StatusOK, priceWithTaxResp{
		ProductID: p.ID,
		HSNCode:   res.HSNCode,
		Quote:     tax.PriceWithTax(p.Price, qty, res.Rate),
	})
}
