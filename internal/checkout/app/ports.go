package app

import (
	"context"

	cartdomain "github.com/dwikikusuma/marketplace/internal/cart/domain"
	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/marketplace/internal/order/domain"
	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
)

type CartReader interface {
	GetCart(ctx context.Context, userID string) (cartdomain.Cart, error)
}

type StockReader interface {
	Get(ctx context.Context, productID, supplierID string) (stockdomain.StockLine, error)
}

// CheckoutParams is everything the store needs to run the all-or-nothing
// checkout transaction. Prices are intentionally absent: the store re-prices
// from the row-locked stock lines.
type CheckoutParams struct {
	CartID        string
	UserID        string
	AddressID     string
	OrderNumber   string
	PaymentMethod string
	Lines         []cartdomain.CartLine
}

// Store executes the checkout transaction: lock stock lines, collect every
// shortfall (aborting with a STOCK_ISSUES conflict carrying the full list),
// insert the order with denormalized lines and a pending payment, decrement
// stock, clear the cart — all-or-nothing. A taken order number surfaces as
// ErrOrderNumberTaken so the caller can regenerate and retry.
type Store interface {
	ExecuteCheckout(ctx context.Context, p CheckoutParams) (orderdomain.Order, error)
	// AttachShipping is the post-commit enrichment write; best-effort only.
	AttachShipping(ctx context.Context, orderID string, q domain.ShippingQuote) error
}

// ShippingReader resolves shipping cost and ETA from the address city. It is
// an external collaborator; failures never fail a checkout.
type ShippingReader interface {
	QuoteForAddress(ctx context.Context, addressID string) (domain.ShippingQuote, error)
}
