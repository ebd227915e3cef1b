package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/stats/app"
)

type StatsRepo struct {
	db *sqlx.DB
}

func NewStatsRepo(db *sqlx.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// SalesTrend: per-day order count and revenue, cancelled orders excluded.
func (r *StatsRepo) SalesTrend(ctx context.Context, days int) ([]app.DailySales, error) {
	var out []app.DailySales
	err := r.db.SelectContext(ctx, &out,
		`SELECT date_trunc('day', created_at) AS day,
		        COUNT(*)                      AS orders,
		        COALESCE(SUM(total_amount),0) AS revenue
		 FROM orders
		 WHERE status <> 'cancelled'
		   AND deleted_at IS NULL
		   AND created_at >= now() - make_interval(days => $1)
		 GROUP BY 1 ORDER BY 1`, days)
	if err != nil {
		return nil, fmt.Errorf("sales trend: %w", err)
	}
	return out, nil
}

func (r *StatsRepo) StatusDistribution(ctx context.Context) ([]app.StatusCount, error) {
	var out []app.StatusCount
	err := r.db.SelectContext(ctx, &out,
		`SELECT status, COUNT(*) AS count
		 FROM orders WHERE deleted_at IS NULL
		 GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	return out, nil
}

// Revenue is restricted to delivered orders.
func (r *StatsRepo) Revenue(ctx context.Context) (app.RevenueSummary, error) {
	var out app.RevenueSummary
	err := r.db.GetContext(ctx, &out,
		`SELECT COALESCE(SUM(total_amount),0)           AS total,
		        COALESCE(AVG(total_amount),0)::BIGINT   AS average,
		        COUNT(*)                                AS order_count
		 FROM orders
		 WHERE status = 'delivered' AND deleted_at IS NULL`)
	if err != nil {
		return app.RevenueSummary{}, fmt.Errorf("revenue summary: %w", err)
	}
	return out, nil
}

func (r *StatsRepo) SupplierRequestSummary(ctx context.Context, supplierID string) (app.SupplierRequestSummary, error) {
	out := app.SupplierRequestSummary{SupplierID: supplierID}

	err := r.db.SelectContext(ctx, &out.ByStatus,
		`SELECT status, COUNT(*) AS count
		 FROM supplier_item_requests
		 WHERE supplier_id = $1
		 GROUP BY status ORDER BY status`, supplierID)
	if err != nil {
		return app.SupplierRequestSummary{}, fmt.Errorf("request counts for supplier %s: %w", supplierID, err)
	}

	err = r.db.GetContext(ctx, &out.Revenue,
		`SELECT COALESCE(SUM(supplier_quote * quantity),0)
		 FROM supplier_item_requests
		 WHERE supplier_id = $1 AND status = 'approved'`, supplierID)
	if err != nil {
		return app.SupplierRequestSummary{}, fmt.Errorf("approved revenue for supplier %s: %w", supplierID, err)
	}
	return out, nil
}
