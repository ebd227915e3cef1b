package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dwikikusuma/marketplace/internal/cart/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type Service struct {
	repo  CartRepo
	stock StockReader
}

func NewService(repo CartRepo, stock StockReader) *Service {
	return &Service{repo: repo, stock: stock}
}

// GetOrCreate returns the user's cart, creating it lazily. A concurrent
// create races on the user_id unique constraint; the loser re-reads.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, err
	}

	cart, createErr := s.repo.Create(ctx, userID)
	if createErr == nil {
		return cart, nil
	}
	if apperr.CodeOf(createErr) == "DUPLICATE" {
		return s.repo.Get(ctx, userID)
	}
	return domain.Cart{}, createErr
}

// AddLine validates the supplier offers the product and that the requested
// quantity is in stock, then merges onto any existing line for the same
// (product, supplier) pairing. Price and purchase price are snapshotted at
// add time; a merge keeps the original snapshot.
func (s *Service) AddLine(ctx context.Context, userID, productID, supplierID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}

	line, err := s.stock.Get(ctx, productID, supplierID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !line.Sellable() {
		return domain.Cart{}, apperr.Conflict("ITEM_INACTIVE", "item is not available for sale")
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	total := qty
	existing, merged := cart.Line(productID, supplierID)
	if merged {
		total += existing.Quantity
	}
	if total > domain.MaxLineQuantity {
		return domain.Cart{}, apperr.Newf(apperr.KindConflict, "QUANTITY_CAP_EXCEEDED",
			"line quantity %d exceeds the cap of %d", total, domain.MaxLineQuantity)
	}
	if total > line.StockLevel {
		return domain.Cart{}, apperr.Newf(apperr.KindConflict, "INSUFFICIENT_STOCK",
			"requested %d but only %d in stock", total, line.StockLevel)
	}

	if merged {
		err = s.repo.SetLineQuantity(ctx, cart.ID, existing.ID, total)
	} else {
		err = s.repo.InsertLine(ctx, domain.CartLine{
			CartID:        cart.ID,
			ProductID:     productID,
			SupplierID:    supplierID,
			Quantity:      qty,
			Price:         line.EffectivePrice(),
			PurchasePrice: line.PurchasePrice,
		})
	}
	if err != nil {
		return domain.Cart{}, err
	}

	return s.repo.Get(ctx, userID)
}

// UpdateLine sets an absolute quantity for a line, re-validating stock.
func (s *Service) UpdateLine(ctx context.Context, userID, lineID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}
	if qty > domain.MaxLineQuantity {
		return domain.Cart{}, apperr.Newf(apperr.KindConflict, "QUANTITY_CAP_EXCEEDED",
			"line quantity %d exceeds the cap of %d", qty, domain.MaxLineQuantity)
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	line, ok := cart.LineByID(lineID)
	if !ok {
		return domain.Cart{}, apperr.NotFound("CART_LINE_NOT_FOUND", "cart line not found")
	}

	stockLine, err := s.stock.Get(ctx, line.ProductID, line.SupplierID)
	if err != nil {
		return domain.Cart{}, err
	}
	if qty > stockLine.StockLevel {
		return domain.Cart{}, apperr.Newf(apperr.KindConflict, "INSUFFICIENT_STOCK",
			"requested %d but only %d in stock", qty, stockLine.StockLevel)
	}

	if err := s.repo.SetLineQuantity(ctx, cart.ID, lineID, qty); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID string) (domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if _, ok := cart.LineByID(lineID); !ok {
		return domain.Cart{}, apperr.NotFound("CART_LINE_NOT_FOUND", "cart line not found")
	}
	if err := s.repo.RemoveLine(ctx, cart.ID, lineID); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}
