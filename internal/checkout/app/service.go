package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/marketplace/internal/order/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

var (
	ErrEmptyCart = apperr.Validation("EMPTY_CART", "cart is empty")

	// ErrOrderNumberTaken reports an order_number unique-constraint hit;
	// Checkout regenerates the suffix and retries the whole transaction.
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// Service converts a cart into an order. Totals are always computed from the
// live stock line price inside the transaction, never from the cart's
// add-time snapshot: the charged price is the price current at commit time.
type Service struct {
	cart     CartReader
	stock    StockReader
	store    Store
	shipping ShippingReader
	log      *slog.Logger

	maxAttempts   int
	maxConcurrent int
}

func NewService(cart CartReader, stock StockReader, store Store, shipping ShippingReader, log *slog.Logger, maxAttempts, maxConcurrent int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Service{
		cart:          cart,
		stock:         stock,
		store:         store,
		shipping:      shipping,
		log:           log,
		maxAttempts:   maxAttempts,
		maxConcurrent: maxConcurrent,
	}
}

// Quote prices the cart against live stock lines without reserving anything.
func (s *Service) Quote(ctx context.Context, userID string) (domain.Quote, error) {
	cart, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return domain.Quote{}, err
	}
	if cart.IsEmpty() {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(cart.Lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range cart.Lines {
		g.Go(func() error {
			it := cart.Lines[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			stockLine, err := s.stock.Get(ctx, it.ProductID, it.SupplierID)
			if err != nil {
				return fmt.Errorf("failed to get stock line (%s,%s): %w", it.ProductID, it.SupplierID, err)
			}

			unit := stockLine.EffectivePrice()
			lines[idx] = domain.QuoteLine{
				ProductID:  it.ProductID,
				SupplierID: it.SupplierID,
				Name:       stockLine.ProductName,
				Quantity:   it.Quantity,
				UnitPrice:  unit,
				LineTotal:  unit * int64(it.Quantity),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	var total int64
	for _, line := range lines {
		total += line.LineTotal
	}
	return domain.Quote{Lines: lines, Total: total}, nil
}

// Checkout runs the atomic cart→order conversion. The store transaction
// re-validates stock under row locks and either commits the order, its
// lines, the payment row, the stock decrements and the cart clear together,
// or rolls all of it back.
func (s *Service) Checkout(ctx context.Context, userID, addressID, paymentMethod string) (orderdomain.Order, error) {
	if addressID == "" {
		return orderdomain.Order{}, apperr.Validation("INVALID_INPUT", "address_id is required")
	}
	if paymentMethod == "" {
		paymentMethod = orderdomain.PaymentMethodCashOnDelivery
	}

	cart, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if cart.IsEmpty() {
		return orderdomain.Order{}, ErrEmptyCart
	}

	var order orderdomain.Order
	for attempt := 0; ; attempt++ {
		order, err = s.store.ExecuteCheckout(ctx, CheckoutParams{
			CartID:        cart.ID,
			UserID:        userID,
			AddressID:     addressID,
			OrderNumber:   newOrderNumber(time.Now()),
			PaymentMethod: paymentMethod,
			Lines:         cart.Lines,
		})
		if err == nil {
			break
		}
		if errors.Is(err, ErrOrderNumberTaken) && attempt+1 < s.maxAttempts {
			continue
		}
		if errors.Is(err, ErrOrderNumberTaken) {
			return orderdomain.Order{}, apperr.Wrap(err, apperr.KindConflict,
				"ORDER_NUMBER_EXHAUSTED", "could not allocate a unique order number")
		}
		return orderdomain.Order{}, err
	}

	s.enrichShipping(ctx, &order)
	return order, nil
}

// enrichShipping runs outside the guarantee boundary: the order is already
// committed, so any failure here is logged and swallowed.
func (s *Service) enrichShipping(ctx context.Context, order *orderdomain.Order) {
	quote, err := s.shipping.QuoteForAddress(ctx, order.AddressID)
	if err != nil {
		s.log.Warn("shipping enrichment failed",
			slog.String("order_id", order.ID), slog.Any("err", err))
		return
	}

	if err := s.store.AttachShipping(ctx, order.ID, quote); err != nil {
		s.log.Warn("attaching shipping to order failed",
			slog.String("order_id", order.ID), slog.Any("err", err))
		return
	}
	order.ShippingCost = &quote.Cost
	order.ShippingETADays = &quote.ETADays
}

// newOrderNumber builds ORD-YYYYMMDD-NNNN with a random 4-digit suffix. The
// suffix is not globally unique; the database constraint plus the retry loop
// in Checkout make it so.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), rand.IntN(10000))
}
