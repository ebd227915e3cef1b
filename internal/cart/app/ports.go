package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/cart/domain"
	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
)

type CartRepo interface {
	// Get returns sql.ErrNoRows when the user has no cart yet.
	Get(ctx context.Context, userID string) (domain.Cart, error)
	Create(ctx context.Context, userID string) (domain.Cart, error)
	InsertLine(ctx context.Context, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int32) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}

type StockReader interface {
	Get(ctx context.Context, productID, supplierID string) (stockdomain.StockLine, error)
}
