package app

import (
	"context"
	"testing"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/internal/stock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type fakeStockRepo struct {
	lines map[string]domain.StockLine // keyed by id

	gotLimit  int
	setCalls  int
	lastLevel int32
}

func (f *fakeStockRepo) Get(ctx context.Context, productID, supplierID string) (domain.StockLine, error) {
	for _, l := range f.lines {
		if l.ProductID == productID && l.SupplierID == supplierID {
			return l, nil
		}
	}
	return domain.StockLine{}, apperr.NotFound("STOCK_LINE_NOT_FOUND", "no such stock line")
}

func (f *fakeStockRepo) GetByID(ctx context.Context, id string) (domain.StockLine, error) {
	l, ok := f.lines[id]
	if !ok {
		return domain.StockLine{}, apperr.NotFound("STOCK_LINE_NOT_FOUND", "no such stock line")
	}
	return l, nil
}

func (f *fakeStockRepo) ListBySupplier(ctx context.Context, supplierID string, limit int, cursor string) ([]domain.StockLine, string, error) {
	f.gotLimit = limit
	return nil, "", nil
}

func (f *fakeStockRepo) SetStockLevel(ctx context.Context, id string, level int32) error {
	f.setCalls++
	f.lastLevel = level
	l := f.lines[id]
	l.StockLevel = level
	f.lines[id] = l
	return nil
}

var (
	stockAdmin    = identity.Actor{UserID: "adm", Role: identity.RoleAdmin}
	stockCustomer = identity.Actor{UserID: "cus", Role: identity.RoleCustomer}
)

func TestGetValidatesInput(t *testing.T) {
	svc := NewService(&fakeStockRepo{lines: map[string]domain.StockLine{}})

	_, err := svc.Get(context.Background(), " ", "sup-1")
	if apperr.CodeOf(err) != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestListBySupplierClampsLimit(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"zero falls back to default", 0, 20},
		{"negative falls back to default", -3, 20},
		{"over cap is clamped", 500, 100},
		{"in range passes through", 42, 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeStockRepo{lines: map[string]domain.StockLine{}}
			svc := NewService(repo)

			if _, _, err := svc.ListBySupplier(context.Background(), "sup-1", tc.in, ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.gotLimit != tc.want {
				t.Fatalf("limit = %d, want %d", repo.gotLimit, tc.want)
			}
		})
	}
}

func TestAdjust(t *testing.T) {
	newRepo := func() *fakeStockRepo {
		return &fakeStockRepo{lines: map[string]domain.StockLine{
			"sl-1": {ID: "sl-1", ProductID: "p1", SupplierID: "sup-1", StockLevel: 5},
		}}
	}

	t.Run("staff sets an absolute level", func(t *testing.T) {
		repo := newRepo()
		svc := NewService(repo)

		if err := svc.Adjust(context.Background(), stockAdmin, "sl-1", 12); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.setCalls != 1 || repo.lastLevel != 12 {
			t.Fatalf("setCalls=%d lastLevel=%d", repo.setCalls, repo.lastLevel)
		}
	})

	t.Run("customer is rejected", func(t *testing.T) {
		repo := newRepo()
		svc := NewService(repo)

		err := svc.Adjust(context.Background(), stockCustomer, "sl-1", 12)
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if repo.setCalls != 0 {
			t.Fatal("level must not change")
		}
	})

	t.Run("negative level is rejected", func(t *testing.T) {
		repo := newRepo()
		svc := NewService(repo)

		err := svc.Adjust(context.Background(), stockAdmin, "sl-1", -1)
		if apperr.CodeOf(err) != "INVALID_STOCK_LEVEL" {
			t.Fatalf("expected INVALID_STOCK_LEVEL, got %v", err)
		}
	})

	t.Run("unknown line surfaces not found", func(t *testing.T) {
		repo := newRepo()
		svc := NewService(repo)

		err := svc.Adjust(context.Background(), stockAdmin, "missing", 3)
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}
