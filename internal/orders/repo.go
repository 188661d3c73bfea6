package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Address(ctx context.Context, id string) (*Address, error) {
	return findAddress(ctx, r.DB, id)
}

func findAddress(ctx context.Context, db postgres.DBTX, id string) (*Address, error) {
	var a Address
	err := db.QueryRow(ctx, `
		SELECT address_id, user_id, address_line, city, state, zip_code, country, phone_number
		FROM addresses WHERE address_id=$1`, id).
		Scan(&a.ID, &a.UserID, &a.AddressLine, &a.City, &a.State, &a.ZipCode, &a.Country, &a.PhoneNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "address %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query address: %w", err)
	}
	return &a, nil
}

const orderSelect = `
	SELECT order_id, user_id, address_id, total_price, status, payment_method, created_at, updated_at
	FROM orders`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.TotalPrice, &status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	o.Status = Status(status)
	return o, err
}

func (r *Repo) Order(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, orderSelect+` WHERE order_id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := r.items(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	addr, err := r.Address(ctx, o.AddressID)
	switch {
	case err == nil:
		o.Address = addr
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, p Page) ([]Order, error) {
	return r.list(ctx, orderSelect+` WHERE user_id=$3 ORDER BY created_at DESC, order_id LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset, userID)
}

func (r *Repo) ListAll(ctx context.Context, p Page) ([]Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY created_at DESC, order_id LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *Repo) items(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT oi.order_item_id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON p.product_id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.product_id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]OrderItem, len(orderIDs))
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, id string, to Status, from ...Status) (bool, error) {
	sql := `UPDATE orders SET status=$2, updated_at=now() WHERE order_id=$1`
	args := []any{id, string(to)}
	if len(from) > 0 {
		allowed := make([]string, len(from))
		for i, s := range from {
			allowed[i] = string(s)
		}
		sql += ` AND status = ANY($3)`
		args = append(args, allowed)
	}
	ct, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id=$1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return false, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	return false, nil
}

func (r *Repo) InTx(ctx context.Context, fn func(Tx) error) error {
	return postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx, products: catalog.NewRepo(tx)})
	})
}

// pgTx runs every step of checkout and restock on one pgx transaction.
type pgTx struct {
	tx       pgx.Tx
	products *catalog.Repo
}

func (t *pgTx) CartLines(ctx context.Context, userID string) ([]Line, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT ci.product_id, p.name, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.product_id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.product_id
		FOR UPDATE OF ci`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders(order_id, user_id, address_id, total_price, status, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		RETURNING updated_at`,
		o.ID, o.UserID, o.AddressID, o.TotalPrice, string(o.Status), o.PaymentMethod, o.CreatedAt).Scan(&o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *pgTx) InsertItem(ctx context.Context, it *OrderItem) error {
	if _, err := t.tx.Exec(ctx, `
		INSERT INTO order_items(order_item_id, order_id, product_id, quantity, price)
		VALUES ($1,$2,$3,$4,$5)`,
		it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price); err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (t *pgTx) ReduceInventory(ctx context.Context, productID string, qty int) error {
	return t.products.ReduceInventory(ctx, productID, qty)
}

func (t *pgTx) RestoreInventory(ctx context.Context, productID string, qty int) error {
	return t.products.RestoreInventory(ctx, productID, qty)
}

func (t *pgTx) ClearCart(ctx context.Context, userID string) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
