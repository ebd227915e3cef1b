package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/order/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
	"github.com/dwikikusuma/marketplace/pkg/postgres"
)

type OrderRepo struct {
	db *sqlx.DB
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

type orderRow struct {
	ID              string        `db:"id"`
	OrderNumber     string        `db:"order_number"`
	UserID          string        `db:"user_id"`
	AddressID       string        `db:"address_id"`
	TotalAmount     int64         `db:"total_amount"`
	Status          string        `db:"status"`
	ShippingCost    sql.NullInt64 `db:"shipping_cost"`
	ShippingETADays sql.NullInt32 `db:"shipping_eta_days"`
	CreatedAt       sql.NullTime  `db:"created_at"`
	UpdatedAt       sql.NullTime  `db:"updated_at"`
}

type orderLineRow struct {
	ID           string `db:"id"`
	OrderID      string `db:"order_id"`
	ProductID    string `db:"product_id"`
	SupplierID   string `db:"supplier_id"`
	Quantity     int32  `db:"quantity"`
	Price        int64  `db:"price"`
	ProductName  string `db:"product_name"`
	ProductSKU   string `db:"product_sku"`
	ProductImage string `db:"product_image"`
	SupplierName string `db:"supplier_name"`
}

type paymentRow struct {
	OrderID     string       `db:"order_id"`
	Method      string       `db:"method"`
	Status      string       `db:"status"`
	Amount      int64        `db:"amount"`
	PaymentDate sql.NullTime `db:"payment_date"`
}

const orderColumns = `id, order_number, user_id, address_id, total_amount, status,
	shipping_cost, shipping_eta_days, created_at, updated_at`

func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return r.get(ctx, r.db, orderID)
}

type querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func (r *OrderRepo) get(ctx context.Context, q querier, orderID string) (domain.Order, error) {
	var row orderRow
	err := q.GetContext(ctx, &row,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND deleted_at IS NULL`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}

	order := row.toDomain()
	if err := r.loadChildren(ctx, q, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepo) loadChildren(ctx context.Context, q querier, order *domain.Order) error {
	var lineRows []orderLineRow
	err := q.SelectContext(ctx, &lineRows,
		`SELECT id, order_id, product_id, supplier_id, quantity, price,
		        product_name, product_sku, product_image, supplier_name
		 FROM order_lines WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}
	for _, lr := range lineRows {
		order.Lines = append(order.Lines, domain.OrderLine(lr))
	}

	var pay paymentRow
	err = q.GetContext(ctx, &pay,
		`SELECT order_id, method, status, amount, payment_date FROM payments WHERE order_id = $1`, order.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get payment: %w", err)
	}
	if err == nil {
		p := domain.Payment{
			OrderID: pay.OrderID,
			Method:  pay.Method,
			Status:  domain.PaymentStatus(pay.Status),
			Amount:  pay.Amount,
		}
		if pay.PaymentDate.Valid {
			t := pay.PaymentDate.Time
			p.PaymentDate = &t
		}
		order.Payment = &p
	}
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+orderColumns+` FROM orders
		 WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %s: %w", userID, err)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order := row.toDomain()
		if err := r.loadChildren(ctx, r.db, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateStatusTx locks the order row, validates the transition and applies
// the compensating effects in the same transaction: entering cancelled
// releases every line's stock and fails the payment; entering delivered
// settles a cash-on-delivery payment.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, orderID string, target domain.Status) (domain.Order, error) {
	var updated domain.Order

	err := postgres.ExecTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var row orderRow
		err := tx.GetContext(ctx, &row,
			`SELECT `+orderColumns+` FROM orders
			 WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("ORDER_NOT_FOUND", "order not found")
		}
		if err != nil {
			return fmt.Errorf("lock order %s: %w", orderID, err)
		}

		current := domain.Status(row.Status)
		if !domain.CanTransition(current, target) {
			return apperr.Newf(apperr.KindInvalidTransition, "INVALID_STATUS_TRANSITION",
				"cannot transition order from %s to %s", current, target)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, target, orderID); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		switch target {
		case domain.StatusCancelled:
			if err := r.releaseStock(ctx, tx, orderID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE payments SET status = $1 WHERE order_id = $2`,
				domain.PaymentFailed, orderID); err != nil {
				return fmt.Errorf("fail payment: %w", err)
			}
		case domain.StatusDelivered:
			if _, err := tx.ExecContext(ctx,
				`UPDATE payments SET status = $1, payment_date = now()
				 WHERE order_id = $2 AND method = $3`,
				domain.PaymentPaid, orderID, domain.PaymentMethodCashOnDelivery); err != nil {
				return fmt.Errorf("settle payment: %w", err)
			}
		}

		updated, err = r.get(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// releaseStock restores the exact quantity each order line reserved. The
// status check in the caller guards idempotency: a cancelled order cannot be
// cancelled again, so the release runs at most once.
func (r *OrderRepo) releaseStock(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE stock_lines sl
		 SET stock_level = sl.stock_level + ol.quantity, updated_at = now()
		 FROM order_lines ol
		 WHERE ol.order_id = $1
		   AND sl.product_id = ol.product_id
		   AND sl.supplier_id = ol.supplier_id
		   AND sl.deleted_at IS NULL`, orderID)
	if err != nil {
		return fmt.Errorf("release stock for order %s: %w", orderID, err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("release stock for order %s: %w", orderID, err)
	}
	return nil
}

func (row orderRow) toDomain() domain.Order {
	order := domain.Order{
		ID:          row.ID,
		OrderNumber: row.OrderNumber,
		UserID:      row.UserID,
		AddressID:   row.AddressID,
		TotalAmount: row.TotalAmount,
		Status:      domain.Status(row.Status),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
	if row.ShippingCost.Valid {
		v := row.ShippingCost.Int64
		order.ShippingCost = &v
	}
	if row.ShippingETADays.Valid {
		v := row.ShippingETADays.Int32
		order.ShippingETADays = &v
	}
	return order
}
