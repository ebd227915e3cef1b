package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dwikikusuma/marketplace/internal/cart/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type CartRepo struct {
	db *sqlx.DB
}

func NewCartRepo(db *sqlx.DB) *CartRepo {
	return &CartRepo{db: db}
}

type cartRow struct {
	ID        string       `db:"id"`
	UserID    string       `db:"user_id"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type cartLineRow struct {
	ID            string       `db:"id"`
	CartID        string       `db:"cart_id"`
	ProductID     string       `db:"product_id"`
	SupplierID    string       `db:"supplier_id"`
	Quantity      int32        `db:"quantity"`
	Price         int64        `db:"price"`
	PurchasePrice int64        `db:"purchase_price"`
	CreatedAt     sql.NullTime `db:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at"`
}

// Get returns sql.ErrNoRows untouched when the user has no cart; the service
// uses that to create lazily.
func (r *CartRepo) Get(ctx context.Context, userID string) (domain.Cart, error) {
	var row cartRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	var lineRows []cartLineRow
	err = r.db.SelectContext(ctx, &lineRows,
		`SELECT id, cart_id, product_id, supplier_id, quantity, price, purchase_price, created_at, updated_at
		 FROM cart_lines WHERE cart_id = $1 ORDER BY created_at`, row.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list cart lines: %w", err)
	}

	cart := domain.Cart{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	for _, lr := range lineRows {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:            lr.ID,
			CartID:        lr.CartID,
			ProductID:     lr.ProductID,
			SupplierID:    lr.SupplierID,
			Quantity:      lr.Quantity,
			Price:         lr.Price,
			PurchasePrice: lr.PurchasePrice,
			CreatedAt:     lr.CreatedAt.Time,
			UpdatedAt:     lr.UpdatedAt.Time,
		})
	}
	return cart, nil
}

func (r *CartRepo) Create(ctx context.Context, userID string) (domain.Cart, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO carts (user_id) VALUES ($1)`, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Cart{}, apperr.Wrap(err, apperr.KindConflict, "DUPLICATE", "cart already exists")
		}
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return r.Get(ctx, userID)
}

func (r *CartRepo) InsertLine(ctx context.Context, line domain.CartLine) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_lines (cart_id, product_id, supplier_id, quantity, price, purchase_price)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		line.CartID, line.ProductID, line.SupplierID, line.Quantity, line.Price, line.PurchasePrice)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(err, apperr.KindConflict, "DUPLICATE", "cart line already exists")
		}
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_lines SET quantity = $1, updated_at = now() WHERE id = $2 AND cart_id = $3`,
		quantity, lineID, cartID)
	if err != nil {
		return fmt.Errorf("set cart line quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set cart line quantity: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("CART_LINE_NOT_FOUND", "cart line not found")
	}
	return nil
}

func (r *CartRepo) RemoveLine(ctx context.Context, cartID, lineID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE id = $1 AND cart_id = $2`, lineID, cartID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
