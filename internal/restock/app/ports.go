package app

import (
	"context"

	"github.com/dwikikusuma/marketplace/internal/restock/domain"
	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
)

type RequestRepo interface {
	Create(ctx context.Context, req domain.Request) (domain.Request, error)
	Get(ctx context.Context, id string) (domain.Request, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]domain.Request, error)
	ListByRequester(ctx context.Context, userID string) ([]domain.Request, error)
	// UpdateFields edits quantity/urgency/requester notes; the repo rejects
	// the write unless the row is still pending (checked under lock).
	UpdateFields(ctx context.Context, id string, quantity int32, urgency domain.Urgency, notes string) (domain.Request, error)
	// TransitionTx validates pending→target under a row lock and persists
	// the decision payload with it.
	TransitionTx(ctx context.Context, id string, target domain.Status, d Decision) (domain.Request, error)
	Delete(ctx context.Context, id string) error
}

// Decision carries the supplier's payload for approve/reject transitions.
type Decision struct {
	SupplierQuote     *int64
	RejectionReason   string
	NotesFromSupplier string
}

type StockReader interface {
	GetByID(ctx context.Context, id string) (stockdomain.StockLine, error)
}

// Notification is rendered content for the counterparty; dispatch is
// fire-and-forget.
type Notification struct {
	RecipientUserID     string
	RecipientSupplierID string
	Subject             string
	Body                string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
