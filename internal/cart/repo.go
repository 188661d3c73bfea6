package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-orders/internal/catalog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo keeps cart rows in Postgres. Cart writes have no cross-row invariant,
// so each runs as a single statement.
type Repo struct{ DB *pgxpool.Pool }

const itemSelect = `
	SELECT ci.cart_item_id, ci.product_id, p.name, ci.quantity, p.price, ci.price, p.quantity, ci.added_at
	FROM cart_items ci
	JOIN products p ON p.product_id = ci.product_id`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice, &it.SnapshotPrice, &it.Available, &it.AddedAt)
	return it, err
}

func (r *Repo) Items(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, itemSelect+` WHERE ci.user_id=$1 ORDER BY ci.added_at, ci.cart_item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) AddOrIncrement(ctx context.Context, userID string, p *catalog.Product, qty int) (*Item, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(cart_item_id, user_id, product_id, quantity, price)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, price = EXCLUDED.price
		RETURNING cart_item_id`,
		uuid.NewString(), userID, p.ID, qty, p.Price).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	return r.item(ctx, userID, id)
}

func (r *Repo) SetQuantity(ctx context.Context, userID, itemID string, qty int) (*Item, bool, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE cart_items SET quantity=$3 WHERE cart_item_id=$1 AND user_id=$2`, itemID, userID, qty)
	if err != nil {
		return nil, false, fmt.Errorf("update cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, false, nil
	}
	it, err := r.item(ctx, userID, itemID)
	if err != nil {
		return nil, false, err
	}
	return it, true, nil
}

func (r *Repo) Remove(ctx context.Context, userID, itemID string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE cart_item_id=$1 AND user_id=$2`, itemID, userID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, userID string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *Repo) item(ctx context.Context, userID, itemID string) (*Item, error) {
	it, err := scanItem(r.DB.QueryRow(ctx, itemSelect+` WHERE ci.cart_item_id=$1 AND ci.user_id=$2`, itemID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notOwned()
	}
	if err != nil {
		return nil, fmt.Errorf("query cart item: %w", err)
	}
	return &it, nil
}
