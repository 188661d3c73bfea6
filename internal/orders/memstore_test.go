package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/shopspring/decimal"
)

type memProduct struct {
	name  string
	price decimal.Decimal
	stock int
}

type memCartLine struct {
	productID string
	qty       int
}

type memState struct {
	products map[string]memProduct
	carts    map[string][]memCartLine
	orders   map[string]Order
}

func (s memState) clone() memState {
	c := memState{
		products: make(map[string]memProduct, len(s.products)),
		carts:    make(map[string][]memCartLine, len(s.carts)),
		orders:   make(map[string]Order, len(s.orders)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]memCartLine(nil), v...)
	}
	for k, v := range s.orders {
		v.Items = append([]OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	return c
}

// memStore is a Store whose transactions work on a copy that is swapped in
// only when fn succeeds.
type memStore struct {
	mu        sync.Mutex
	state     memState
	addresses map[string]Address

	failRestore error
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			products: map[string]memProduct{},
			carts:    map[string][]memCartLine{},
			orders:   map[string]Order{},
		},
		addresses: map[string]Address{},
	}
}

func (m *memStore) addProduct(id string, price string, stock int) {
	m.state.products[id] = memProduct{name: "Product " + id, price: decimal.RequireFromString(price), stock: stock}
}

func (m *memStore) addToCart(userID, productID string, qty int) {
	m.state.carts[userID] = append(m.state.carts[userID], memCartLine{productID: productID, qty: qty})
}

func (m *memStore) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[id].stock
}

func (m *memStore) cartLen(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.carts[userID])
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.orders)
}

func (m *memStore) Address(_ context.Context, id string) (*Address, error) {
	a, ok := m.addresses[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "address %s not found", id)
	}
	return &a, nil
}

func (m *memStore) Order(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	o.Items = append([]OrderItem(nil), o.Items...)
	return &o, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string, p Page) ([]Order, error) {
	return m.list(func(o Order) bool { return o.UserID == userID }, p), nil
}

func (m *memStore) ListAll(_ context.Context, p Page) ([]Order, error) {
	return m.list(func(Order) bool { return true }, p), nil
}

func (m *memStore) list(keep func(Order) bool, p Page) []Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for _, o := range m.state.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if p.Offset >= len(out) {
		return []Order{}
	}
	out = out[p.Offset:]
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

func (m *memStore) SetStatus(_ context.Context, id string, to Status, from ...Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return false, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			allowed = allowed || s == o.Status
		}
		if !allowed {
			return false, nil
		}
	}
	o.Status = to
	m.state.orders[id] = o
	return true, nil
}

func (m *memStore) InTx(_ context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{state: work, failRestore: m.failRestore}); err != nil {
		return err
	}
	m.state = work
	return nil
}

type memTx struct {
	state       memState
	failRestore error
}

func (t *memTx) CartLines(_ context.Context, userID string) ([]Line, error) {
	var out []Line
	for _, c := range t.state.carts[userID] {
		p := t.state.products[c.productID]
		out = append(out, Line{ProductID: c.productID, Name: p.name, Quantity: c.qty, UnitPrice: p.price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	stored := *o
	stored.Items = nil
	t.state.orders[o.ID] = stored
	return nil
}

func (t *memTx) InsertItem(_ context.Context, it *OrderItem) error {
	o := t.state.orders[it.OrderID]
	o.Items = append(o.Items, *it)
	t.state.orders[it.OrderID] = o
	return nil
}

func (t *memTx) ReduceInventory(_ context.Context, productID string, qty int) error {
	p, ok := t.state.products[productID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "product %s not found", productID)
	}
	if p.stock < qty {
		return apperr.New(apperr.KindInsufficientInventory,
			"not enough inventory for product %s: requested %d, available %d", productID, qty, p.stock)
	}
	p.stock -= qty
	t.state.products[productID] = p
	return nil
}

func (t *memTx) RestoreInventory(_ context.Context, productID string, qty int) error {
	if t.failRestore != nil {
		return t.failRestore
	}
	p := t.state.products[productID]
	p.stock += qty
	t.state.products[productID] = p
	return nil
}

func (t *memTx) ClearCart(_ context.Context, userID string) error {
	delete(t.state.carts, userID)
	return nil
}

type recordedEvent struct {
	topic string
	env   Envelope
}

type memPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *memPublisher) Publish(_ context.Context, topic string, env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{topic: topic, env: env})
}

func (p *memPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

type memCache struct {
	entries map[string]CachedStatus
}

func newMemCache() *memCache { return &memCache{entries: map[string]CachedStatus{}} }

func (c *memCache) Get(_ context.Context, id string) (CachedStatus, bool) {
	s, ok := c.entries[id]
	return s, ok
}

func (c *memCache) Set(_ context.Context, id string, s CachedStatus) { c.entries[id] = s }

func (c *memCache) Fill(_ context.Context, id string, s CachedStatus) {
	if _, ok := c.entries[id]; !ok {
		c.entries[id] = s
	}
}
