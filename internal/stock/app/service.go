package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/internal/stock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

// Service exposes read access to the stock ledger plus the admin-side
// absolute level adjustment. The reserve/release mutations are not here:
// they only ever run inside the checkout and order transactions that own
// them (see internal/checkout and internal/order infra).
type Service struct {
	repo StockRepo
}

func NewService(repo StockRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, productID, supplierID string) (domain.StockLine, error) {
	if strings.TrimSpace(productID) == "" || strings.TrimSpace(supplierID) == "" {
		return domain.StockLine{}, apperr.Validation("INVALID_INPUT", "product id and supplier id are required")
	}
	return s.repo.Get(ctx, productID, supplierID)
}

func (s *Service) ListBySupplier(ctx context.Context, supplierID string, limit int, cursor string) ([]domain.StockLine, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListBySupplier(ctx, supplierID, limit, cursor)
}

// Adjust sets an absolute stock level, inventory staff only. This is the
// manual correction path, not the checkout reserve/release path.
func (s *Service) Adjust(ctx context.Context, actor identity.Actor, stockLineID string, level int32) error {
	if !actor.IsStaff() {
		return apperr.Unauthorized("FORBIDDEN", "only inventory staff may adjust stock")
	}
	if level < 0 {
		return apperr.Validation("INVALID_STOCK_LEVEL", "stock level cannot be negative")
	}
	if _, err := s.repo.GetByID(ctx, stockLineID); err != nil {
		return err
	}
	return s.repo.SetStockLevel(ctx, stockLineID, level)
}
