package tax

import (
	"context"
	"strings"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/google/uuid"
)

type Store interface {
	ListRates(ctx context.Context) ([]GSTRate, error)
	GetRate(ctx context.Context, id string) (*GSTRate, error)
	CreateRate(ctx context.Context, g *GSTRate) error
	UpdateRate(ctx context.Context, g *GSTRate) error
	DeleteRate(ctx context.Context, id string) error

	ListHSN(ctx context.Context, query string, limit, offset int) ([]HSNCode, error)
	GetHSN(ctx context.Context, id string) (*HSNCode, error)
	CreateHSN(ctx context.Context, h *HSNCode) error
	UpdateHSN(ctx context.Context, h *HSNCode) error
	DeleteHSN(ctx context.Context, id string) error
	BulkImportHSN(ctx context.Context, codes []HSNCode) error
	AssociateCategory(ctx context.Context, categoryID, hsnID string) error
}

// Admin guards the tax tables: every operation requires the admin role.
type Admin struct {
	Store Store
}

const maxHSNPage = 100

func requireAdmin(a auth.Actor) error {
	if !a.IsAdmin() {
		return apperr.New(apperr.KindForbidden, "admin role required")
	}
	return nil
}

func (s *Admin) ListRates(ctx context.Context, a auth.Actor) ([]GSTRate, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	return s.Store.ListRates(ctx)
}

func (s *Admin) GetRate(ctx context.Context, a auth.Actor, id string) (*GSTRate, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	return s.Store.GetRate(ctx, id)
}

func (s *Admin) CreateRate(ctx context.Context, a auth.Actor, g GSTRate) (*GSTRate, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := normalizeRate(&g); err != nil {
		return nil, err
	}
	g.ID = uuid.NewString()
	if err := s.Store.CreateRate(ctx, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Admin) UpdateRate(ctx context.Context, a auth.Actor, g GSTRate) (*GSTRate, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := normalizeRate(&g); err != nil {
		return nil, err
	}
	if err := s.Store.UpdateRate(ctx, &g); err != nil {
		return nil, err
	}
	return s.Store.GetRate(ctx, g.ID)
}

func (s *Admin) DeleteRate(ctx context.Context, a auth.Actor, id string) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	return s.Store.DeleteRate(ctx, id)
}

func normalizeRate(g *GSTRate) error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return apperr.New(apperr.KindInvalidInput, "rate name is required")
	}
	if !ValidPercentage(g.Percentage) {
		return apperr.New(apperr.KindInvalidInput, "percentage must be between 0 and 100")
	}
	g.Percentage = g.Percentage.Round(2)
	return nil
}

func (s *Admin) ListHSN(ctx context.Context, a auth.Actor, query string, limit, offset int) ([]HSNCode, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxHSNPage {
		limit = maxHSNPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.ListHSN(ctx, strings.TrimSpace(query), limit, offset)
}

func (s *Admin) GetHSN(ctx context.Context, a auth.Actor, id string) (*HSNCode, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	return s.Store.GetHSN(ctx, id)
}

func (s *Admin) CreateHSN(ctx context.Context, a auth.Actor, h HSNCode) (*HSNCode, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := normalizeHSN(&h); err != nil {
		return nil, err
	}
	h.ID = uuid.NewString()
	if err := s.Store.CreateHSN(ctx, &h); err != nil {
		return nil, err
	}
	return s.Store.GetHSN(ctx, h.ID)
}

func (s *Admin) UpdateHSN(ctx context.Context, a auth.Actor, h HSNCode) (*HSNCode, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	if err := normalizeHSN(&h); err != nil {
		return nil, err
	}
	if err := s.Store.UpdateHSN(ctx, &h); err != nil {
		return nil, err
	}
	return s.Store.GetHSN(ctx, h.ID)
}

func (s *Admin) DeleteHSN(ctx context.Context, a auth.Actor, id string) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	return s.Store.DeleteHSN(ctx, id)
}

// BulkImportHSN validates the whole batch before touching the store.
func (s *Admin) BulkImportHSN(ctx context.Context, a auth.Actor, codes []HSNCode) (int, error) {
	if err := requireAdmin(a); err != nil {
		return 0, err
	}
	if len(codes) == 0 {
		return 0, apperr.New(apperr.KindInvalidInput, "no hsn codes to import")
	}
	seen := make(map[string]bool, len(codes))
	for i := range codes {
		if err := normalizeHSN(&codes[i]); err != nil {
			return 0, apperr.New(apperr.KindInvalidInput, "entry %d: %s", i+1, apperr.Message(err))
		}
		if seen[codes[i].Code] {
			return 0, apperr.New(apperr.KindInvalidInput, "duplicate hsn code %s in import", codes[i].Code)
		}
		seen[codes[i].Code] = true
		codes[i].ID = uuid.NewString()
	}
	if err := s.Store.BulkImportHSN(ctx, codes); err != nil {
		return 0, err
	}
	return len(codes), nil
}

func (s *Admin) AssociateCategory(ctx context.Context, a auth.Actor, categoryID, hsnID string) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	if categoryID == "" || hsnID == "" {
		return apperr.New(apperr.KindInvalidInput, "category id and hsn id are required")
	}
	return s.Store.AssociateCategory(ctx, categoryID, hsnID)
}

// normalizeHSN accepts 2 to 8 digit codes.
func normalizeHSN(h *HSNCode) error {
	h.Code = strings.TrimSpace(h.Code)
	h.Description = strings.TrimSpace(h.Description)
	if len(h.Code) < 2 || len(h.Code) > 8 {
		return apperr.New(apperr.KindInvalidInput, "hsn code must have 2 to 8 digits")
	}
	for _, r := range h.Code {
		if r < '0' || r > '9' {
			return apperr.New(apperr.KindInvalidInput, "hsn code must be numeric")
		}
	}
	if h.DefaultRateID != nil && *h.DefaultRateID == "" {
		h.DefaultRateID = nil
	}
	return nil
}
