package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

// Service is read-only rollups over orders and restock requests. The numbers
// are eventually consistent with concurrent writes; no query here takes locks.
type Service struct {
	repo StatsRepo
}

func NewService(repo StatsRepo) *Service {
	return &Service{repo: repo}
}

const defaultTrendDays = 30

func (s *Service) SalesTrend(ctx context.Context, actor identity.Actor, days int) ([]DailySales, error) {
	if !actor.IsStaff() {
		return nil, apperr.Unauthorized("FORBIDDEN", "statistics are staff only")
	}
	if days <= 0 || days > 365 {
		days = defaultTrendDays
	}
	return s.repo.SalesTrend(ctx, days)
}

func (s *Service) StatusDistribution(ctx context.Context, actor identity.Actor) ([]StatusCount, error) {
	if !actor.IsStaff() {
		return nil, apperr.Unauthorized("FORBIDDEN", "statistics are staff only")
	}
	return s.repo.StatusDistribution(ctx)
}

func (s *Service) Revenue(ctx context.Context, actor identity.Actor) (RevenueSummary, error) {
	if !actor.IsStaff() {
		return RevenueSummary{}, apperr.Unauthorized("FORBIDDEN", "statistics are staff only")
	}
	return s.repo.Revenue(ctx)
}

// SupplierRequestSummary is visible to staff and to the supplier it covers.
func (s *Service) SupplierRequestSummary(ctx context.Context, actor identity.Actor, supplierID string) (SupplierRequestSummary, error) {
	if !actor.IsStaff() && !(actor.IsSupplier() && actor.SupplierID == supplierID) {
		return SupplierRequestSummary{}, apperr.Unauthorized("FORBIDDEN", "no access to this supplier's statistics")
	}
	return s.repo.SupplierRequestSummary(ctx, supplierID)
}
