package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/internal/order/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// Get returns an order; customers only see their own.
func (s *Service) Get(ctx context.Context, actor identity.Actor, orderID string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !actor.IsStaff() && order.UserID != actor.UserID {
		return domain.Order{}, apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	}
	return order, nil
}

func (s *Service) ListByUser(ctx context.Context, actor identity.Actor, userID string) ([]domain.Order, error) {
	if !actor.IsStaff() && userID != actor.UserID {
		return nil, apperr.Unauthorized("FORBIDDEN", "cannot list another user's orders")
	}
	return s.repo.ListByUser(ctx, userID)
}

// UpdateStatus drives the order state machine. Only inventory staff may
// transition orders. Transition legality and all compensating effects are
// enforced inside the repository transaction so a concurrent update cannot
// slip between check and write.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, orderID, target string) (domain.Order, error) {
	if !actor.IsStaff() {
		return domain.Order{}, apperr.Unauthorized("FORBIDDEN", "only inventory staff may update order status")
	}

	status, ok := domain.ParseStatus(target)
	if !ok {
		return domain.Order{}, apperr.Newf(apperr.KindValidation, "INVALID_STATUS",
			"unknown order status %q", target)
	}

	return s.repo.UpdateStatusTx(ctx, orderID, status)
}
