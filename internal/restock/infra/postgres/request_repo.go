package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/restock/app"
	"github.com/dwikikusuma/marketplace/internal/restock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
	"github.com/dwikikusuma/marketplace/pkg/postgres"
)

type RequestRepo struct {
	db *sqlx.DB
}

func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

type requestRow struct {
	ID                 string         `db:"id"`
	StockLineID        string         `db:"stock_line_id"`
	SupplierID         string         `db:"supplier_id"`
	Quantity           int32          `db:"quantity"`
	Urgency            string         `db:"urgency"`
	Status             string         `db:"status"`
	NotesFromRequester string         `db:"notes_from_requester"`
	NotesFromSupplier  string         `db:"notes_from_supplier"`
	SupplierQuote      sql.NullInt64  `db:"supplier_quote"`
	RejectionReason    sql.NullString `db:"rejection_reason"`
	CreatedBy          string         `db:"created_by"`
	CreatedAt          sql.NullTime   `db:"created_at"`
	UpdatedAt          sql.NullTime   `db:"updated_at"`
}

const requestColumns = `id, stock_line_id, supplier_id, quantity, urgency, status,
	notes_from_requester, notes_from_supplier, supplier_quote, rejection_reason,
	created_by, created_at, updated_at`

func (r *RequestRepo) Create(ctx context.Context, req domain.Request) (domain.Request, error) {
	var row requestRow
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO supplier_item_requests
		 (stock_line_id, supplier_id, quantity, urgency, status, notes_from_requester, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+requestColumns,
		req.StockLineID, req.SupplierID, req.Quantity, req.Urgency, req.Status,
		req.NotesFromRequester, req.CreatedBy)
	if err != nil {
		return domain.Request{}, fmt.Errorf("create restock request: %w", err)
	}
	return row.toDomain(), nil
}

func (r *RequestRepo) Get(ctx context.Context, id string) (domain.Request, error) {
	var row requestRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+requestColumns+` FROM supplier_item_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	if err != nil {
		return domain.Request{}, fmt.Errorf("get restock request %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *RequestRepo) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Request, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM supplier_item_requests
		 WHERE supplier_id = $1 ORDER BY created_at DESC`, supplierID)
}

func (r *RequestRepo) ListByRequester(ctx context.Context, userID string) ([]domain.Request, error) {
	return r.list(ctx,
		`SELECT `+requestColumns+` FROM supplier_item_requests
		 WHERE created_by = $1 ORDER BY created_at DESC`, userID)
}

func (r *RequestRepo) list(ctx context.Context, query string, arg any) ([]domain.Request, error) {
	var rows []requestRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, fmt.Errorf("list restock requests: %w", err)
	}
	out := make([]domain.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// UpdateFields only writes while the row is still pending; the status guard
// in the WHERE clause closes the race with a concurrent supplier decision.
func (r *RequestRepo) UpdateFields(ctx context.Context, id string, quantity int32, urgency domain.Urgency, notes string) (domain.Request, error) {
	var row requestRow
	err := r.db.GetContext(ctx, &row,
		`UPDATE supplier_item_requests
		 SET quantity = $1, urgency = $2, notes_from_requester = $3, updated_at = now()
		 WHERE id = $4 AND status = $5
		 RETURNING `+requestColumns,
		quantity, urgency, notes, id, domain.StatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, apperr.InvalidTransition("REQUEST_NOT_PENDING",
			"only pending requests can be edited")
	}
	if err != nil {
		return domain.Request{}, fmt.Errorf("update restock request %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *RequestRepo) TransitionTx(ctx context.Context, id string, target domain.Status, d app.Decision) (domain.Request, error) {
	var updated domain.Request

	err := postgres.ExecTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var row requestRow
		err := tx.GetContext(ctx, &row,
			`SELECT `+requestColumns+` FROM supplier_item_requests WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
		}
		if err != nil {
			return fmt.Errorf("lock restock request %s: %w", id, err)
		}

		current := domain.Status(row.Status)
		if !domain.CanTransition(current, target) {
			return apperr.Newf(apperr.KindInvalidTransition, "INVALID_STATUS_TRANSITION",
				"cannot transition request from %s to %s", current, target)
		}

		var quote sql.NullInt64
		if d.SupplierQuote != nil {
			quote = sql.NullInt64{Int64: *d.SupplierQuote, Valid: true}
		}
		var reason sql.NullString
		if d.RejectionReason != "" {
			reason = sql.NullString{String: d.RejectionReason, Valid: true}
		}

		err = tx.GetContext(ctx, &row,
			`UPDATE supplier_item_requests
			 SET status = $1, supplier_quote = $2, rejection_reason = $3,
			     notes_from_supplier = COALESCE(NULLIF($4, ''), notes_from_supplier),
			     updated_at = now()
			 WHERE id = $5
			 RETURNING `+requestColumns,
			target, quote, reason, d.NotesFromSupplier, id)
		if err != nil {
			return fmt.Errorf("transition restock request %s: %w", id, err)
		}

		updated = row.toDomain()
		return nil
	})
	if err != nil {
		return domain.Request{}, err
	}
	return updated, nil
}

func (r *RequestRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM supplier_item_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete restock request %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete restock request %s: %w", id, err)
	}
	if affected == 0 {
		return apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	return nil
}

func (row requestRow) toDomain() domain.Request {
	req := domain.Request{
		ID:                 row.ID,
		StockLineID:        row.StockLineID,
		SupplierID:         row.SupplierID,
		Quantity:           row.Quantity,
		Urgency:            domain.Urgency(row.Urgency),
		Status:             domain.Status(row.Status),
		NotesFromRequester: row.NotesFromRequester,
		NotesFromSupplier:  row.NotesFromSupplier,
		RejectionReason:    row.RejectionReason.String,
		CreatedBy:          row.CreatedBy,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
	if row.SupplierQuote.Valid {
		v := row.SupplierQuote.Int64
		req.SupplierQuote = &v
	}
	return req
}
