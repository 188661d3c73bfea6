package orders

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	kafkax "github.com/ariefcatur/go-storefront-orders/internal/kafka"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPaymentMethod = "Cash on Delivery"
	RestockWarning       = "order cancelled but inventory could not be restored, please contact support"
)

// Service coordinates the order lifecycle. Events and Cache are optional.
type Service struct {
	Store       Store
	Events      Publisher
	Cache       StatusCache
	ServiceName string
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Checkout converts the actor's cart into a pending order. Order, items,
// inventory decrements and the cart clear commit together or not at all.
func (s *Service) Checkout(ctx context.Context, actor auth.Actor, addressID, paymentMethod string) (*Order, error) {
	if addressID == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "shipping address is required")
	}
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	addr, err := s.Store.Address(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != actor.UserID {
		return nil, apperr.New(apperr.KindForbidden, "address does not belong to user")
	}

	var order *Order
	err = s.Store.InTx(ctx, func(tx Tx) error {
		lines, err := tx.CartLines(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.New(apperr.KindEmptyCart, "cart is empty")
		}

		o := &Order{
			ID:            uuid.NewString(),
			UserID:        actor.UserID,
			AddressID:     addressID,
			Status:        StatusPending,
			PaymentMethod: paymentMethod,
			CreatedAt:     s.now(),
			TotalPrice:    decimal.Zero,
		}
		for _, l := range lines {
			o.TotalPrice = o.TotalPrice.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		o.TotalPrice = o.TotalPrice.Round(2)
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}

		for _, l := range lines {
			it := OrderItem{
				ID:        uuid.NewString(),
				OrderID:   o.ID,
				ProductID: l.ProductID,
				Name:      l.Name,
				Quantity:  l.Quantity,
				Price:     l.UnitPrice,
			}
			if err := tx.InsertItem(ctx, &it); err != nil {
				return err
			}
			if err := tx.ReduceInventory(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
			o.Items = append(o.Items, it)
		}

		if err := tx.ClearCart(ctx, actor.UserID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Address = addr

	s.cacheStatus(ctx, order)
	s.emit(ctx, TopicOrderPlaced, EventOrderPlaced, order.ID, placedPayload(order))
	log.Printf("order %s placed by %s: %d items, total %s", order.ID, actor.UserID, len(order.Items), order.TotalPrice.StringFixed(2))
	return order, nil
}

// CancelOrder cancels a pending or processing order and returns its items to
// stock. The status change is committed first; a failed restock is reported
// on the result and does not undo the cancellation.
func (s *Service) CancelOrder(ctx context.Context, actor auth.Actor, orderID string) (*CancelResult, error) {
	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to cancel this order")
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, apperr.New(apperr.KindInvalidTransition, "order cannot be cancelled. current status: %s", o.Status)
	}

	ok, err := s.Store.SetStatus(ctx, orderID, StatusCancelled, cancellable()...)
	if err != nil {
		return nil, err
	}
	if !ok {
		// status moved between the read and the conditional update
		cur, err := s.Store.Order(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, apperr.New(apperr.KindInvalidTransition, "order cannot be cancelled. current status: %s", cur.Status)
	}
	o.Status = StatusCancelled
	o.UpdatedAt = s.now()
	s.cacheStatus(ctx, o)

	res := &CancelResult{Order: o}
	err = s.Store.InTx(ctx, func(tx Tx) error {
		for _, it := range o.Items {
			if err := tx.RestoreInventory(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("order %s cancelled but restock failed: %v", orderID, err)
		res.RestockFailed = true
		res.Warning = RestockWarning
	}

	s.emit(ctx, TopicOrderCancelled, EventOrderCancelled, orderID, OrderCancelledPayload{
		OrderID:       orderID,
		UserID:        o.UserID,
		CancelledBy:   actor.UserID,
		RestockFailed: res.RestockFailed,
	})
	log.Printf("order %s cancelled by %s", orderID, actor.UserID)
	return res, nil
}

// UpdateOrderStatus lets an admin set any of the known statuses. No lifecycle
// check is applied and inventory is not touched.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor auth.Actor, orderID, status string) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "admin access required")
	}
	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	before, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.SetStatus(ctx, orderID, to); err != nil {
		return nil, err
	}
	after, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.cacheStatus(ctx, after)
	if before.Status.Terminal() && before.Status != after.Status {
		log.Printf("order %s reopened by %s: %s -> %s", orderID, actor.UserID, before.Status, after.Status)
	}
	s.emit(ctx, TopicOrderStatusChanged, EventOrderStatusChanged, orderID, OrderStatusChangedPayload{
		OrderID: orderID,
		From:    before.Status,
		To:      to,
		By:      actor.UserID,
	})
	return after, nil
}

func (s *Service) GetOrder(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.UserID) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to view this order")
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, actor auth.Actor, p Page) ([]Order, error) {
	return s.Store.ListByUser(ctx, actor.UserID, p.normalize())
}

func (s *Service) ListAll(ctx context.Context, actor auth.Actor, p Page) ([]Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "admin access required")
	}
	return s.Store.ListAll(ctx, p.normalize())
}

// Status answers from the cache when it can and fills it on a miss.
func (s *Service) Status(ctx context.Context, actor auth.Actor, orderID string) (Status, error) {
	if s.Cache != nil {
		if c, ok := s.Cache.Get(ctx, orderID); ok {
			if !actor.CanAccess(c.UserID) {
				return "", apperr.New(apperr.KindForbidden, "not allowed to view this order")
			}
			return c.Status, nil
		}
	}
	o, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return "", err
	}
	if s.Cache != nil {
		s.Cache.Fill(ctx, o.ID, CachedStatus{Status: o.Status, UserID: o.UserID})
	}
	return o.Status, nil
}

func (s *Service) cacheStatus(ctx context.Context, o *Order) {
	if s.Cache != nil {
		s.Cache.Set(ctx, o.ID, CachedStatus{Status: o.Status, UserID: o.UserID})
	}
}

func (s *Service) emit(ctx context.Context, topic, eventType, orderID string, payload any) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, topic, Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	})
}
