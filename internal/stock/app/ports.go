package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/stock/domain"
)

type StockRepo interface {
	Get(ctx context.Context, productID, supplierID string) (domain.StockLine, error)
	GetByID(ctx context.Context, id string) (domain.StockLine, error)
	ListBySupplier(ctx context.Context, supplierID string, limit int, cursor string) ([]domain.StockLine, string, error)
	SetStockLevel(ctx context.Context, id string, level int32) error
}
