package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/internal/restock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type Service struct {
	repo     RequestRepo
	stock    StockReader
	notifier Notifier
	log      *slog.Logger
}

func NewService(repo RequestRepo, stock StockReader, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, stock: stock, notifier: notifier, log: log}
}

type CreateInput struct {
	StockLineID        string
	Quantity           int32
	Urgency            string
	NotesFromRequester string
}

// Create opens a pending request against a supplier's stock line. Only
// inventory staff may ask suppliers to restock.
func (s *Service) Create(ctx context.Context, actor identity.Actor, in CreateInput) (domain.Request, error) {
	if !actor.IsStaff() {
		return domain.Request{}, apperr.Unauthorized("FORBIDDEN", "only inventory staff may create restock requests")
	}
	if in.Quantity < 1 {
		return domain.Request{}, apperr.Validation("INVALID_QUANTITY", "quantity must be at least 1")
	}
	urgency := domain.UrgencyMedium
	if in.Urgency != "" {
		var ok bool
		urgency, ok = domain.ParseUrgency(in.Urgency)
		if !ok {
			return domain.Request{}, apperr.Newf(apperr.KindValidation, "INVALID_URGENCY",
				"unknown urgency %q", in.Urgency)
		}
	}

	line, err := s.stock.GetByID(ctx, in.StockLineID)
	if err != nil {
		return domain.Request{}, err
	}

	req, err := s.repo.Create(ctx, domain.Request{
		StockLineID:        line.ID,
		SupplierID:         line.SupplierID,
		Quantity:           in.Quantity,
		Urgency:            urgency,
		Status:             domain.StatusPending,
		NotesFromRequester: in.NotesFromRequester,
		CreatedBy:          actor.UserID,
	})
	if err != nil {
		return domain.Request{}, err
	}

	s.notify(ctx, Notification{
		RecipientSupplierID: req.SupplierID,
		Subject:             "New restock request",
		Body: fmt.Sprintf("Restock requested: %d x %s (%s), urgency %s",
			req.Quantity, line.ProductName, line.ProductSKU, req.Urgency),
	})
	return req, nil
}

func (s *Service) Get(ctx context.Context, actor identity.Actor, id string) (domain.Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	if !s.canSee(actor, req) {
		return domain.Request{}, apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, actor identity.Actor) ([]domain.Request, error) {
	switch {
	case actor.IsStaff():
		return s.repo.ListByRequester(ctx, actor.UserID)
	case actor.IsSupplier():
		return s.repo.ListBySupplier(ctx, actor.SupplierID)
	default:
		return nil, apperr.Unauthorized("FORBIDDEN", "no access to restock requests")
	}
}

type DecideInput struct {
	Status            string
	SupplierQuote     *int64
	RejectionReason   string
	NotesFromSupplier string
}

// Decide moves a pending request to approved or rejected. Only the owning
// supplier may decide; an approval requires a quote, a rejection a reason.
// Approval records the quote only — the stock ledger is untouched until a
// future fulfillment step performs the increment.
func (s *Service) Decide(ctx context.Context, actor identity.Actor, id string, in DecideInput) (domain.Request, error) {
	target, ok := domain.ParseStatus(in.Status)
	if !ok {
		return domain.Request{}, apperr.Newf(apperr.KindValidation, "INVALID_STATUS",
			"unknown request status %q", in.Status)
	}
	if target != domain.StatusApproved && target != domain.StatusRejected {
		return domain.Request{}, apperr.Validation("INVALID_STATUS",
			"suppliers may only approve or reject")
	}

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	if !actor.IsSupplier() || actor.SupplierID != req.SupplierID {
		return domain.Request{}, apperr.Unauthorized("FORBIDDEN", "only the owning supplier may decide this request")
	}

	d := Decision{NotesFromSupplier: in.NotesFromSupplier}
	switch target {
	case domain.StatusApproved:
		if in.SupplierQuote == nil {
			return domain.Request{}, apperr.Validation("QUOTE_REQUIRED", "supplier_quote is required to approve")
		}
		if *in.SupplierQuote < 0 {
			return domain.Request{}, apperr.Validation("INVALID_QUOTE", "supplier_quote cannot be negative")
		}
		d.SupplierQuote = in.SupplierQuote
	case domain.StatusRejected:
		if strings.TrimSpace(in.RejectionReason) == "" {
			return domain.Request{}, apperr.Validation("REASON_REQUIRED", "rejection_reason is required to reject")
		}
		d.RejectionReason = in.RejectionReason
	}

	updated, err := s.repo.TransitionTx(ctx, id, target, d)
	if err != nil {
		return domain.Request{}, err
	}

	s.notify(ctx, Notification{
		RecipientUserID: updated.CreatedBy,
		Subject:         fmt.Sprintf("Restock request %s", target),
		Body:            fmt.Sprintf("Your restock request %s is now %s", updated.ID, target),
	})
	return updated, nil
}

// Cancel is the requester's exit while the request is still pending.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id string) (domain.Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	if req.CreatedBy != actor.UserID && !actor.IsStaff() {
		return domain.Request{}, apperr.Unauthorized("FORBIDDEN", "only the requester may cancel")
	}

	updated, err := s.repo.TransitionTx(ctx, id, domain.StatusCancelled, Decision{})
	if err != nil {
		return domain.Request{}, err
	}

	s.notify(ctx, Notification{
		RecipientSupplierID: updated.SupplierID,
		Subject:             "Restock request cancelled",
		Body:                fmt.Sprintf("Restock request %s was cancelled by the requester", updated.ID),
	})
	return updated, nil
}

type UpdateInput struct {
	Quantity           int32
	Urgency            string
	NotesFromRequester string
}

// Update edits quantity/urgency/notes while the request is pending.
func (s *Service) Update(ctx context.Context, actor identity.Actor, id string, in UpdateInput) (domain.Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Request{}, err
	}
	if req.CreatedBy != actor.UserID && !actor.IsStaff() {
		return domain.Request{}, apperr.Unauthorized("FORBIDDEN", "only the requester may edit")
	}
	if !req.Editable() {
		return domain.Request{}, apperr.InvalidTransition("REQUEST_NOT_PENDING",
			"only pending requests can be edited")
	}
	if in.Quantity < 1 {
		return domain.Request{}, apperr.Validation("INVALID_QUANTITY", "quantity must be at least 1")
	}
	urgency, ok := domain.ParseUrgency(in.Urgency)
	if !ok {
		return domain.Request{}, apperr.Newf(apperr.KindValidation, "INVALID_URGENCY",
			"unknown urgency %q", in.Urgency)
	}

	return s.repo.UpdateFields(ctx, id, in.Quantity, urgency, in.NotesFromRequester)
}

// Delete removes a request entirely; admin only, and never for decided
// requests — approved/rejected rows are audit history.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized("FORBIDDEN", "only an admin may delete requests")
	}
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !req.Deletable() {
		return apperr.Conflict("REQUEST_NOT_DELETABLE",
			"only pending or cancelled requests can be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) canSee(actor identity.Actor, req domain.Request) bool {
	if actor.IsStaff() {
		return true
	}
	if actor.IsSupplier() && actor.SupplierID == req.SupplierID {
		return true
	}
	return req.CreatedBy == actor.UserID
}

// notify is best-effort: a dispatch failure is logged and never turns a
// successful transition into a reported failure.
func (s *Service) notify(ctx context.Context, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification dispatch failed",
			slog.String("subject", n.Subject), slog.Any("err", err))
	}
}
