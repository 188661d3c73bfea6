package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type TaxAdmin interface {
	ListRates(ctx context.Context, a auth.Actor) ([]tax.GSTRate, error)
	GetRate(ctx context.Context, a auth.Actor, id string) (*tax.GSTRate, error)
	CreateRate(ctx context.Context, a auth.Actor, g tax.GSTRate) (*tax.GSTRate, error)
	UpdateRate(ctx context.Context, a auth.Actor, g tax.GSTRate) (*tax.GSTRate, error)
	DeleteRate(ctx context.Context, a auth.Actor, id string) error
	ListHSN(ctx context.Context, a auth.Actor, query string, limit, offset int) ([]tax.HSNCode, error)
	GetHSN(ctx context.Context, a auth.Actor, id string) (*tax.HSNCode, error)
	CreateHSN(ctx context.Context, a auth.Actor, h tax.HSNCode) (*tax.HSNCode, error)
	UpdateHSN(ctx context.Context, a auth.Actor, h tax.HSNCode) (*tax.HSNCode, error)
	DeleteHSN(ctx context.Context, a auth.Actor, id string) error
	BulkImportHSN(ctx context.Context, a auth.Actor, codes []tax.HSNCode) (int, error)
	AssociateCategory(ctx context.Context, a auth.Actor, categoryID, hsnID string) error
}

type TaxHandler struct {
	Admin TaxAdmin
}

// Patch bodies: absent fields keep their stored value.
type ratePatch struct {
	Name        *string          `json:"rate_name"`
	Percentage  *decimal.Decimal `json:"percentage"`
	Description *string          `json:"description"`
}

type hsnPatch struct {
	Code          *string `json:"code"`
	Description   *string `json:"description"`
	DefaultRateID *string `json:"default_gst_rate_id"`
}

type bulkImportReq struct {
	Codes []tax.HSNCode `json:"hsn_codes"`
}

type associateReq struct {
	CategoryID string `json:"category_id"`
	HSNID      string `json:"hsn_id"`
}

func (h *TaxHandler) Register(r chi.Router) {
	r.Route("/tax", func(r chi.Router) {
		r.Get("/gst", h.listRates)
		r.Post("/gst", h.createRate)
		r.Get("/gst/{id}", h.getRate)
		r.Patch("/gst/{id}", h.updateRate)
		r.Delete("/gst/{id}", h.deleteRate)

		r.Get("/hsn", h.listHSN)
		r.Post("/hsn", h.createHSN)
		r.Post("/hsn/bulk-import", h.bulkImport)
		r.Post("/hsn/associate-category", h.associateCategory)
		r.Get("/hsn/{id}", h.getHSN)
		r.Patch("/hsn/{id}", h.updateHSN)
		r.Delete("/hsn/{id}", h.deleteHSN)
	})
}

func timeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func (h *TaxHandler) listRates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()

	out, err := h.Admin.ListRates(ctx, actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []tax.GSTRate{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TaxHandler) getRate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()

	g, err := h.Admin.GetRate(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *TaxHandler) createRate(w http.ResponseWriter, r *http.Request) {
	var req tax.GSTRate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()

	g, err := h.Admin.CreateRate(ctx, actorFrom(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *TaxHandler) updateRate(w http.ResponseWriter, r *http.Request) {
	var req ratePatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()

	actor := actorFrom(r)
	cur, err := h.Admin.GetRate(ctx, actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name != nil {
		cur.Name = *req.Name
	}
	if req.Percentage != nil {
		cur.Percentage = *req.Percentage
	}
	if req.Description != nil {
		cur.Description = *req.Description
	}

	g, err := h.Admin.UpdateRate(ctx, actor, *cur)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *TaxHandler) deleteRate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()

	if err := h.Admin.DeleteRate(ctx, actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "gst rate deleted"})
}

func (h *TaxHandler) listHSN(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()

	out, err := h.Admin.ListHSN(ctx, actorFrom(r), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []tax.HSNCode{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TaxHandler) getHSN(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()

	code, err := h.Admin.GetHSN(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

func (h *TaxHandler) createHSN(w http.ResponseWriter, r *http.Request) {
	var req tax.HSNCode
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()

	code, err := h.Admin.CreateHSN(ctx, actorFrom(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

func (h *TaxHandler) updateHSN(w http.ResponseWriter, r *http.Request) {
	var req hsnPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()

	actor := actorFrom(r)
	cur, err := h.Admin.GetHSN(ctx, actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Code != nil {
		cur.Code = *req.Code
	}
	if req.Description != nil {
		cur.Description = *req.Description
	}
	if req.DefaultRateID != nil {
		cur.DefaultRateID = req.DefaultRateID
	}

	code, err := h.Admin.UpdateHSN(ctx, actor, *cur)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

func (h *TaxHandler) deleteHSN(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()

	if err := h.Admin.DeleteHSN(ctx, actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "hsn code deleted"})
}

func (h *TaxHandler) bulkImport(w http.ResponseWriter, r *http.Request) {
	var req bulkImportReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	n, err := h.Admin.BulkImportHSN(ctx, actorFrom(r), req.Codes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": n})
}

func (h *TaxHandler) associateCategory(w http.ResponseWriter, r *http.Request) {
	var req associateReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()

	if err := h.Admin.AssociateCategory(ctx, actorFrom(r), req.CategoryID, req.HSNID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category associated with hsn code"})
}
