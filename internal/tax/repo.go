package tax

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Classifications(ctx context.Context, productIDs []string) (map[string]Classification, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.product_id, ph.code, pg.percentage, ch.code, cg.percentage
		FROM products p
		LEFT JOIN hsn_codes ph ON ph.hsn_id = p.hsn_code_id
		LEFT JOIN gst_rates pg ON pg.rate_id = ph.default_gst_rate_id
		LEFT JOIN categories c ON c.category_id = p.category_id
		LEFT JOIN hsn_codes ch ON ch.hsn_id = c.default_hsn_id
		LEFT JOIN gst_rates cg ON cg.rate_id = ch.default_gst_rate_id
		WHERE p.product_id = ANY($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Classification, len(productIDs))
	for rows.Next() {
		var (
			id             string
			pCode, cCode   *string
			pRate, cRate   decimal.NullDecimal
			classification Classification
		)
		if err := rows.Scan(&id, &pCode, &pRate, &cCode, &cRate); err != nil {
			return nil, err
		}
		if pCode != nil {
			classification.Product = &HSNRef{Code: *pCode, Rate: pRate}
		}
		if cCode != nil {
			classification.Category = &HSNRef{Code: *cCode, Rate: cRate}
		}
		out[id] = classification
	}
	return out, rows.Err()
}

// ---- GST rates ----

func (r *Repo) ListRates(ctx context.Context) ([]GSTRate, error) {
	rows, err := r.DB.Query(ctx, `SELECT rate_id, rate_name, percentage, description, created_at
	                              FROM gst_rates ORDER BY percentage, rate_name`)
	if err != nil {
		return nil, fmt.Errorf("query gst rates: %w", err)
	}
	defer rows.Close()

	var out []GSTRate
	for rows.Next() {
		var g GSTRate
		if err := rows.Scan(&g.ID, &g.Name, &g.Percentage, &g.Description, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) GetRate(ctx context.Context, id string) (*GSTRate, error) {
	var g GSTRate
	err := r.DB.QueryRow(ctx, `SELECT rate_id, rate_name, percentage, description, created_at
	                           FROM gst_rates WHERE rate_id=$1`, id).
		Scan(&g.ID, &g.Name, &g.Percentage, &g.Description, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "gst rate %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query gst rate: %w", err)
	}
	return &g, nil
}

func (r *Repo) CreateRate(ctx context.Context, g *GSTRate) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO gst_rates(rate_id, rate_name, percentage, description)
		VALUES ($1,$2,$3,$4) RETURNING created_at`,
		g.ID, g.Name, g.Percentage, g.Description).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert gst rate: %w", err)
	}
	return nil
}

func (r *Repo) UpdateRate(ctx context.Context, g *GSTRate) error {
	ct, err := r.DB.Exec(ctx, `UPDATE gst_rates SET rate_name=$2, percentage=$3, description=$4 WHERE rate_id=$1`,
		g.ID, g.Name, g.Percentage, g.Description)
	if err != nil {
		return fmt.Errorf("update gst rate: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "gst rate %s not found", g.ID)
	}
	return nil
}

func (r *Repo) DeleteRate(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM gst_rates WHERE rate_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete gst rate: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "gst rate %s not found", id)
	}
	return nil
}

// ---- HSN codes ----

const hsnSelect = `
	SELECT h.hsn_id, h.code, h.description, h.default_gst_rate_id, g.rate_name, g.percentage, h.created_at
	FROM hsn_codes h
	LEFT JOIN gst_rates g ON h.default_gst_rate_id = g.rate_id`

func scanHSN(row pgx.Row) (HSNCode, error) {
	var h HSNCode
	err := row.Scan(&h.ID, &h.Code, &h.Description, &h.DefaultRateID, &h.RateName, &h.Percentage, &h.CreatedAt)
	return h, err
}

// ListHSN returns codes ordered by code. A non-empty query matches code or description.
func (r *Repo) ListHSN(ctx context.Context, query string, limit, offset int) ([]HSNCode, error) {
	sql := hsnSelect + ` ORDER BY h.code LIMIT $1 OFFSET $2`
	args := []any{limit, offset}
	if query != "" {
		sql = hsnSelect + ` WHERE h.code ILIKE $3 OR h.description ILIKE $3 ORDER BY h.code LIMIT $1 OFFSET $2`
		args = append(args, "%"+query+"%")
	}
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query hsn codes: %w", err)
	}
	defer rows.Close()

	var out []HSNCode
	for rows.Next() {
		h, err := scanHSN(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) GetHSN(ctx context.Context, id string) (*HSNCode, error) {
	h, err := scanHSN(r.DB.QueryRow(ctx, hsnSelect+` WHERE h.hsn_id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "hsn code %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query hsn code: %w", err)
	}
	return &h, nil
}

func (r *Repo) CreateHSN(ctx context.Context, h *HSNCode) error {
	return insertHSN(ctx, r.DB, h)
}

func insertHSN(ctx context.Context, db postgres.DBTX, h *HSNCode) error {
	err := db.QueryRow(ctx, `
		INSERT INTO hsn_codes(hsn_id, code, description, default_gst_rate_id)
		VALUES ($1,$2,$3,$4) RETURNING created_at`,
		h.ID, h.Code, h.Description, h.DefaultRateID).Scan(&h.CreatedAt)
	return hsnWriteErr(err, h)
}

func (r *Repo) UpdateHSN(ctx context.Context, h *HSNCode) error {
	ct, err := r.DB.Exec(ctx, `UPDATE hsn_codes SET code=$2, description=$3, default_gst_rate_id=$4 WHERE hsn_id=$1`,
		h.ID, h.Code, h.Description, h.DefaultRateID)
	if err != nil {
		return hsnWriteErr(err, h)
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "hsn code %s not found", h.ID)
	}
	return nil
}

// DeleteHSN refuses to delete a code still referenced by products.
func (r *Repo) DeleteHSN(ctx context.Context, id string) error {
	return postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		var n int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE hsn_code_id=$1`, id).Scan(&n); err != nil {
			return fmt.Errorf("count hsn usage: %w", err)
		}
		if n > 0 {
			return apperr.New(apperr.KindInvalidInput, "cannot delete HSN code that is used by %d products", n)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM hsn_codes WHERE hsn_id=$1`, id)
		if err != nil {
			return fmt.Errorf("delete hsn code: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperr.New(apperr.KindNotFound, "hsn code %s not found", id)
		}
		return nil
	})
}

// BulkImportHSN inserts all codes or none.
func (r *Repo) BulkImportHSN(ctx context.Context, codes []HSNCode) error {
	return postgres.InTx(ctx, r.DB, func(tx pgx.Tx) error {
		for i := range codes {
			if err := insertHSN(ctx, tx, &codes[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) AssociateCategory(ctx context.Context, categoryID, hsnID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE categories SET default_hsn_id=$2
		WHERE category_id=$1 AND EXISTS (SELECT 1 FROM hsn_codes WHERE hsn_id=$2)`, categoryID, hsnID)
	if err != nil {
		return fmt.Errorf("associate category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "category %s or hsn code %s not found", categoryID, hsnID)
	}
	return nil
}

func hsnWriteErr(err error, h *HSNCode) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindInvalidInput, err, fmt.Sprintf("hsn code %s already exists", h.Code))
		case pgForeignKeyViolation:
			rate := ""
			if h.DefaultRateID != nil {
				rate = *h.DefaultRateID
			}
			return apperr.Wrap(apperr.KindInvalidInput, err, fmt.Sprintf("gst rate %s not found", rate))
		}
	}
	return fmt.Errorf("write hsn code: %w", err)
}
