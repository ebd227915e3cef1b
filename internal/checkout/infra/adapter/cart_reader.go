package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	cartdomain "github.com/dwikikusuma/marketplace/internal/cart/domain"
)

// CartServiceReader satisfies the checkout CartReader port over the cart
// service, so checkout never touches cart storage directly.
type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, userID string) (cartdomain.Cart, error) {
	return r.svc.GetOrCreate(ctx, userID)
}
