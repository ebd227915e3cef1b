package app

import (
	"context"
	"time"
)

type DailySales struct {
	Day     time.Time `db:"day" json:"day"`
	Orders  int64     `db:"orders" json:"orders"`
	Revenue int64     `db:"revenue" json:"revenue"`
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

type RevenueSummary struct {
	Total      int64 `db:"total" json:"total"`
	Average    int64 `db:"average" json:"average"`
	OrderCount int64 `db:"order_count" json:"order_count"`
}

// SupplierRequestSummary rolls up a supplier's restock requests: counts per
// status plus revenue over approved quotes only.
type SupplierRequestSummary struct {
	SupplierID string        `json:"supplier_id"`
	ByStatus   []StatusCount `json:"by_status"`
	Revenue    int64         `json:"revenue"`
}

type StatsRepo interface {
	SalesTrend(ctx context.Context, days int) ([]DailySales, error)
	StatusDistribution(ctx context.Context) ([]StatusCount, error)
	Revenue(ctx context.Context) (RevenueSummary, error)
	SupplierRequestSummary(ctx context.Context, supplierID string) (SupplierRequestSummary, error)
}
