package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// Repo is the catalog store. DB may be the pool or an open transaction.
type Repo struct{ DB postgres.DBTX }

func NewRepo(db postgres.DBTX) *Repo { return &Repo{DB: db} }

const productColumns = `product_id, name, price, quantity, hsn_code_id, category_id, created_at, updated_at`

func (r *Repo) FindByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.HSNCodeID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product %s: %w", id, err)
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.HSNCodeID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReduceInventory takes qty units in a single conditional statement, so two
// concurrent callers can never drive the counter below zero.
func (r *Repo) ReduceInventory(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidInput, "quantity must be positive")
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE product_id = $1 AND quantity >= $2`, id, qty)
	if err != nil {
		return fmt.Errorf("reduce inventory %s: %w", id, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var available int
	err = r.DB.QueryRow(ctx, `SELECT quantity FROM products WHERE product_id=$1`, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("read inventory %s: %w", id, err)
	}
	return apperr.New(apperr.KindInsufficientInventory,
		"not enough inventory for product %s: requested %d, available %d", id, qty, available)
}

func (r *Repo) RestoreInventory(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidInput, "quantity must be positive")
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET quantity = quantity + $2, updated_at = now()
		WHERE product_id = $1`, id, qty)
	if err != nil {
		return fmt.Errorf("restore inventory %s: %w", id, err)
	}
	if ct.RowsAffected() != 1 {
		return apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	return nil
}
