package httpx

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/ariefcatur/go-storefront-orders/internal/invoice"
	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	Checkout(ctx context.Context, actor auth.Actor, addressID, paymentMethod string) (*orders.Order, error)
	CancelOrder(ctx context.Context, actor auth.Actor, orderID string) (*orders.CancelResult, error)
	UpdateOrderStatus(ctx context.Context, actor auth.Actor, orderID, status string) (*orders.Order, error)
	GetOrder(ctx context.Context, actor auth.Actor, orderID string) (*orders.Order, error)
	ListMine(ctx context.Context, actor auth.Actor, p orders.Page) ([]orders.Order, error)
	ListAll(ctx context.Context, actor auth.Actor, p orders.Page) ([]orders.Order, error)
	Status(ctx context.Context, actor auth.Actor, orderID string) (orders.Status, error)
}

type InvoiceService interface {
	ForOrder(ctx context.Context, actor auth.Actor, orderID string) (invoice.Invoice, error)
}

// IdempotencyKeys remembers which order a client Idempotency-Key produced.
type IdempotencyKeys interface {
	Lookup(ctx context.Context, userID, key string) (string, bool, error)
	Remember(ctx context.Context, userID, key, orderID string) error
}

type OrdersHandler struct {
	Service  OrderService
	Invoices InvoiceService
	Seller   invoice.Seller
	Idem     IdempotencyKeys
}

type checkoutReq struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.checkout)
	r.Get("/orders", h.listMine)
	r.Get("/orders/all", h.listAll)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Get("/orders/{id}/invoice", h.getInvoice)
	r.Get("/orders/{id}/invoice.pdf", h.getInvoicePDF)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor := actorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Redis is a shortcut only; a lookup failure falls through to a normal checkout.
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" && h.Idem != nil {
		orderID, ok, err := h.Idem.Lookup(ctx, actor.UserID, idemKey)
		if err != nil {
			log.Printf("idempotency lookup: %v", err)
		}
		if ok {
			o, err := h.Service.GetOrder(ctx, actor, orderID)
			if err == nil {
				w.Header().Set("Idempotent-Replayed", "true")
				writeJSON(w, http.StatusOK, o)
				return
			}
			log.Printf("idempotency replay of order %s: %v", orderID, err)
		}
	}

	o, err := h.Service.Checkout(ctx, actor, req.AddressID, req.PaymentMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if idemKey != "" && h.Idem != nil {
		if err := h.Idem.Remember(ctx, actor.UserID, idemKey, o.ID); err != nil {
			log.Printf("idempotency remember: %v", err)
		}
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Service.ListMine)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Service.ListAll)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request,
	fetch func(context.Context, auth.Actor, orders.Page) ([]orders.Order, error)) {
	limit, offset, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := fetch(ctx, actorFrom(r), orders.Page{Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.GetOrder(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	st, err := h.Service.Status(ctx, actorFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": st})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.UpdateOrderStatus(ctx, actorFrom(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.CancelOrder(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) getInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Invoices.ForOrder(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *OrdersHandler) getInvoicePDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	inv, err := h.Invoices.ForOrder(ctx, actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := invoice.RenderPDF(&buf, inv, h.Seller); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+inv.Number+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
