package cart

import (
	"context"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/catalog"
)

type Store interface {
	Items(ctx context.Context, userID string) ([]Item, error)
	// AddOrIncrement inserts the row or adds qty to the existing one.
	AddOrIncrement(ctx context.Context, userID string, p *catalog.Product, qty int) (*Item, error)
	// SetQuantity reports false when the item does not exist for this user.
	SetQuantity(ctx context.Context, userID, itemID string, qty int) (*Item, bool, error)
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type Products interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

type Service struct {
	Store    Store
	Products Products
}

func (s *Service) GetCart(ctx context.Context, userID string) (*Cart, error) {
	items, err := s.Store.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newCart(userID, items), nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*Item, error) {
	if productID == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "product id is required")
	}
	if qty <= 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "quantity must be a positive number")
	}
	p, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.InStock(qty) {
		return nil, apperr.New(apperr.KindInsufficientInventory, "not enough inventory, only %d items available", p.Quantity)
	}
	return s.Store.AddOrIncrement(ctx, userID, p, qty)
}

// UpdateItemQuantity removes the row when qty <= 0.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, qty int) (*UpdateResult, error) {
	if qty <= 0 {
		if err := s.ownedItem(ctx, userID, itemID); err != nil {
			return nil, err
		}
		if err := s.Store.Remove(ctx, userID, itemID); err != nil {
			return nil, err
		}
		return &UpdateResult{Removed: true}, nil
	}

	item, ok, err := s.Store.SetQuantity(ctx, userID, itemID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notOwned()
	}
	return &UpdateResult{Item: item}, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.Store.Remove(ctx, userID, itemID)
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	return s.Store.Clear(ctx, userID)
}

func (s *Service) ownedItem(ctx context.Context, userID, itemID string) error {
	items, err := s.Store.Items(ctx, userID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ID == itemID {
			return nil
		}
	}
	return notOwned()
}

func notOwned() error {
	return apperr.New(apperr.KindNotFound, "cart item not found or does not belong to user")
}
