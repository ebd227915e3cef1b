package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	cartdomain "github.com/dwikikusuma/marketplace/internal/cart/domain"
	"github.com/dwikikusuma/marketplace/internal/checkout/app"
	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/marketplace/internal/order/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
	"github.com/dwikikusuma/marketplace/pkg/postgres"
)

type CheckoutStore struct {
	db *sqlx.DB
}

func NewCheckoutStore(db *sqlx.DB) *CheckoutStore {
	return &CheckoutStore{db: db}
}

type lockedStockRow struct {
	ID            string        `db:"id"`
	ProductID     string        `db:"product_id"`
	SupplierID    string        `db:"supplier_id"`
	ProductName   string        `db:"product_name"`
	ProductSKU    string        `db:"product_sku"`
	ProductImage  string        `db:"product_image"`
	SupplierName  string        `db:"supplier_name"`
	StockLevel    int32         `db:"stock_level"`
	Price         int64         `db:"price"`
	DiscountPrice sql.NullInt64 `db:"discount_price"`
	IsActive      bool          `db:"is_active"`
}

func (row lockedStockRow) effectivePrice() int64 {
	if row.DiscountPrice.Valid {
		return row.DiscountPrice.Int64
	}
	return row.Price
}

// ExecuteCheckout runs the whole cart→order conversion in one transaction:
// every referenced stock line is locked with FOR UPDATE before validation,
// so two concurrent checkouts over the same line serialize and cannot both
// succeed beyond available stock.
func (s *CheckoutStore) ExecuteCheckout(ctx context.Context, p app.CheckoutParams) (orderdomain.Order, error) {
	// Lock in a stable order to avoid deadlock between concurrent checkouts.
	lines := make([]cartdomain.CartLine, len(p.Lines))
	copy(lines, p.Lines)
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].SupplierID < lines[j].SupplierID
	})

	var created orderdomain.Order

	err := postgres.ExecTx(ctx, s.db, func(tx *sqlx.Tx) error {
		locked := make(map[string]lockedStockRow, len(lines))
		var issues []domain.StockIssue

		for _, ln := range lines {
			var row lockedStockRow
			err := tx.GetContext(ctx, &row,
				`SELECT id, product_id, supplier_id, product_name, product_sku, product_image,
				        supplier_name, stock_level, price, discount_price, is_active
				 FROM stock_lines
				 WHERE product_id = $1 AND supplier_id = $2 AND deleted_at IS NULL
				 FOR UPDATE`,
				ln.ProductID, ln.SupplierID)
			if errors.Is(err, sql.ErrNoRows) {
				issues = append(issues, domain.StockIssue{
					ProductID:  ln.ProductID,
					SupplierID: ln.SupplierID,
					Requested:  ln.Quantity,
					Available:  0,
				})
				continue
			}
			if err != nil {
				return fmt.Errorf("lock stock line (%s,%s): %w", ln.ProductID, ln.SupplierID, err)
			}

			if !row.IsActive || row.StockLevel < ln.Quantity {
				available := row.StockLevel
				if !row.IsActive {
					available = 0
				}
				issues = append(issues, domain.StockIssue{
					ProductID:  ln.ProductID,
					SupplierID: ln.SupplierID,
					Requested:  ln.Quantity,
					Available:  available,
				})
				continue
			}
			locked[ln.ProductID+"|"+ln.SupplierID] = row
		}

		if len(issues) > 0 {
			return apperr.Conflict("STOCK_ISSUES", "insufficient stock for one or more lines").
				WithDetails(issues)
		}

		var total int64
		for _, ln := range lines {
			total += locked[ln.ProductID+"|"+ln.SupplierID].effectivePrice() * int64(ln.Quantity)
		}

		var orderID string
		err := tx.GetContext(ctx, &orderID,
			`INSERT INTO orders (order_number, user_id, address_id, total_amount, status)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			p.OrderNumber, p.UserID, p.AddressID, total, orderdomain.StatusPending)
		if err != nil {
			if isUniqueViolation(err) {
				return app.ErrOrderNumberTaken
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, ln := range lines {
			row := locked[ln.ProductID+"|"+ln.SupplierID]
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_lines (order_id, product_id, supplier_id, quantity, price,
				                          product_name, product_sku, product_image, supplier_name)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				orderID, ln.ProductID, ln.SupplierID, ln.Quantity, row.effectivePrice(),
				row.ProductName, row.ProductSKU, row.ProductImage, row.SupplierName); err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}

			res, err := tx.ExecContext(ctx,
				`UPDATE stock_lines SET stock_level = stock_level - $1, updated_at = now()
				 WHERE id = $2 AND stock_level >= $1`,
				ln.Quantity, row.ID)
			if err != nil {
				return fmt.Errorf("decrement stock line %s: %w", row.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("decrement stock line %s: %w", row.ID, err)
			}
			// The lock already guarantees this; a zero here means the
			// validation above is broken, so fail loudly and roll back.
			if affected == 0 {
				return fmt.Errorf("stock line %s changed under lock", row.ID)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payments (order_id, method, status, amount) VALUES ($1, $2, $3, $4)`,
			orderID, p.PaymentMethod, orderdomain.PaymentPending, total); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_lines WHERE cart_id = $1`, p.CartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		created = orderdomain.Order{
			ID:          orderID,
			OrderNumber: p.OrderNumber,
			UserID:      p.UserID,
			AddressID:   p.AddressID,
			TotalAmount: total,
			Status:      orderdomain.StatusPending,
			Payment: &orderdomain.Payment{
				OrderID: orderID,
				Method:  p.PaymentMethod,
				Status:  orderdomain.PaymentPending,
				Amount:  total,
			},
		}
		for _, ln := range lines {
			row := locked[ln.ProductID+"|"+ln.SupplierID]
			created.Lines = append(created.Lines, orderdomain.OrderLine{
				OrderID:      orderID,
				ProductID:    ln.ProductID,
				SupplierID:   ln.SupplierID,
				Quantity:     ln.Quantity,
				Price:        row.effectivePrice(),
				ProductName:  row.ProductName,
				ProductSKU:   row.ProductSKU,
				ProductImage: row.ProductImage,
				SupplierName: row.SupplierName,
			})
		}
		return nil
	})
	if err != nil {
		return orderdomain.Order{}, err
	}
	return created, nil
}

func (s *CheckoutStore) AttachShipping(ctx context.Context, orderID string, q domain.ShippingQuote) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET shipping_cost = $1, shipping_eta_days = $2, updated_at = now()
		 WHERE id = $3`, q.Cost, q.ETADays, orderID)
	if err != nil {
		return fmt.Errorf("attach shipping to order %s: %w", orderID, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
