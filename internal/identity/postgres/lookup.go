package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type Lookup struct {
	db *sqlx.DB
}

func NewLookup(db *sqlx.DB) *Lookup {
	return &Lookup{db: db}
}

type userRow struct {
	ID         string         `db:"id"`
	Role       string         `db:"role"`
	SupplierID sql.NullString `db:"supplier_id"`
}

func (l *Lookup) Resolve(ctx context.Context, userID string) (identity.Actor, error) {
	var row userRow
	err := l.db.GetContext(ctx, &row,
		`SELECT id, role, supplier_id FROM users WHERE id = $1 AND deleted_at IS NULL`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Actor{}, apperr.NotFound("USER_NOT_FOUND", "user not found")
	}
	if err != nil {
		return identity.Actor{}, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	return identity.Actor{
		UserID:     row.ID,
		Role:       identity.Role(row.Role),
		SupplierID: row.SupplierID.String,
	}, nil
}
