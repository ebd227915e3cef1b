package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/order/domain"
)

type OrderRepo interface {
	Get(ctx context.Context, orderID string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// UpdateStatusTx applies the transition and its compensating effects
	// (stock release on cancel, payment settlement on delivery) in one
	// transaction, validating the edge against domain.CanTransition under a
	// row lock.
	UpdateStatusTx(ctx context.Context, orderID string, target domain.Status) (domain.Order, error)
}
