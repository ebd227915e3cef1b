package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/stock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type StockRepo struct {
	db *sqlx.DB
}

func NewStockRepo(db *sqlx.DB) *StockRepo {
	return &StockRepo{db: db}
}

type stockLineRow struct {
	ID            string         `db:"id"`
	ProductID     string         `db:"product_id"`
	SupplierID    string         `db:"supplier_id"`
	ProductName   string         `db:"product_name"`
	ProductSKU    string         `db:"product_sku"`
	ProductImage  string         `db:"product_image"`
	SupplierName  string         `db:"supplier_name"`
	StockLevel    int32          `db:"stock_level"`
	Price         int64          `db:"price"`
	PurchasePrice int64          `db:"purchase_price"`
	DiscountPrice sql.NullInt64  `db:"discount_price"`
	LeadTimeDays  int32          `db:"lead_time_days"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     sql.NullTime   `db:"created_at"`
	UpdatedAt     sql.NullTime   `db:"updated_at"`
}

const stockLineColumns = `id, product_id, supplier_id, product_name, product_sku, product_image,
	supplier_name, stock_level, price, purchase_price, discount_price, lead_time_days,
	is_active, created_at, updated_at`

func (r *StockRepo) Get(ctx context.Context, productID, supplierID string) (domain.StockLine, error) {
	var row stockLineRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+stockLineColumns+` FROM stock_lines
		 WHERE product_id = $1 AND supplier_id = $2 AND deleted_at IS NULL`,
		productID, supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockLine{}, apperr.NotFound("STOCK_LINE_NOT_FOUND", "stock line not found")
	}
	if err != nil {
		return domain.StockLine{}, fmt.Errorf("get stock line (%s,%s): %w", productID, supplierID, err)
	}
	return row.toDomain(), nil
}

func (r *StockRepo) GetByID(ctx context.Context, id string) (domain.StockLine, error) {
	var row stockLineRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+stockLineColumns+` FROM stock_lines WHERE id = $1 AND deleted_at IS NULL`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockLine{}, apperr.NotFound("STOCK_LINE_NOT_FOUND", "stock line not found")
	}
	if err != nil {
		return domain.StockLine{}, fmt.Errorf("get stock line %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// ListBySupplier pages by id cursor, active and soft-deleted rows filtered.
func (r *StockRepo) ListBySupplier(ctx context.Context, supplierID string, limit int, cursor string) ([]domain.StockLine, string, error) {
	var rows []stockLineRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+stockLineColumns+` FROM stock_lines
		 WHERE supplier_id = $1 AND deleted_at IS NULL AND id > COALESCE(NULLIF($2, ''), '00000000-0000-0000-0000-000000000000')::uuid
		 ORDER BY id LIMIT $3`,
		supplierID, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list stock lines for supplier %s: %w", supplierID, err)
	}

	lines := make([]domain.StockLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.toDomain())
	}

	next := ""
	if len(lines) == limit && limit > 0 {
		next = lines[len(lines)-1].ID
	}
	return lines, next, nil
}

func (r *StockRepo) SetStockLevel(ctx context.Context, id string, level int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stock_lines SET stock_level = $1, updated_at = now()
		 WHERE id = $2 AND deleted_at IS NULL`, level, id)
	if err != nil {
		return fmt.Errorf("set stock level for %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set stock level for %s: %w", id, err)
	}
	if affected == 0 {
		return apperr.NotFound("STOCK_LINE_NOT_FOUND", "stock line not found")
	}
	return nil
}

func (row stockLineRow) toDomain() domain.StockLine {
	line := domain.StockLine{
		ID:            row.ID,
		ProductID:     row.ProductID,
		SupplierID:    row.SupplierID,
		ProductName:   row.ProductName,
		ProductSKU:    row.ProductSKU,
		ProductImage:  row.ProductImage,
		SupplierName:  row.SupplierName,
		StockLevel:    row.StockLevel,
		Price:         row.Price,
		PurchasePrice: row.PurchasePrice,
		LeadTimeDays:  row.LeadTimeDays,
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
	if row.DiscountPrice.Valid {
		v := row.DiscountPrice.Int64
		line.DiscountPrice = &v
	}
	return line
}
