package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/checkout/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

// ShippingLookup resolves cost and ETA from the address city. It backs the
// post-commit enrichment only and is never part of the checkout transaction.
type ShippingLookup struct {
	db *sqlx.DB
}

func NewShippingLookup(db *sqlx.DB) *ShippingLookup {
	return &ShippingLookup{db: db}
}

func (l *ShippingLookup) QuoteForAddress(ctx context.Context, addressID string) (domain.ShippingQuote, error) {
	var row struct {
		Cost    int64 `db:"cost"`
		ETADays int32 `db:"eta_days"`
	}
	err := l.db.GetContext(ctx, &row,
		`SELECT sc.cost, sc.eta_days
		 FROM addresses a JOIN shipping_costs sc ON sc.city = a.city
		 WHERE a.id = $1`, addressID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ShippingQuote{}, apperr.NotFound("SHIPPING_NOT_FOUND", "no shipping cost for address city")
	}
	if err != nil {
		return domain.ShippingQuote{}, fmt.Errorf("shipping quote for address %s: %w", addressID, err)
	}
	return domain.ShippingQuote{Cost: row.Cost, ETADays: row.ETADays}, nil
}
