package adapter

import (
	"context"

	stockapp "github.com/dwikikusuma/marketplace/internal/stock/app"
	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
)

type StockServiceReader struct {
	svc *stockapp.Service
}

func NewStockServiceReader(svc *stockapp.Service) *StockServiceReader {
	return &StockServiceReader{svc: svc}
}

func (r *StockServiceReader) Get(ctx context.Context, productID, supplierID string) (stockdomain.StockLine, error) {
	return r.svc.Get(ctx, productID, supplierID)
}
