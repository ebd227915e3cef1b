package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/dwikikusuma/marketplace/internal/identity"
	"github.com/dwikikusuma/marketplace/internal/restock/domain"
	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type fakeRequestRepo struct {
	requests map[string]*domain.Request
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*domain.Request{}}
}

func (f *fakeRequestRepo) Create(ctx context.Context, req domain.Request) (domain.Request, error) {
	f.nextID++
	req.ID = "req-" + strconv.Itoa(f.nextID)
	f.requests[req.ID] = &req
	return req, nil
}

func (f *fakeRequestRepo) Get(ctx context.Context, id string) (domain.Request, error) {
	r, ok := f.requests[id]
	if !ok {
		return domain.Request{}, apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	return *r, nil
}

func (f *fakeRequestRepo) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Request, error) {
	var out []domain.Request
	for _, r := range f.requests {
		if r.SupplierID == supplierID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, userID string) ([]domain.Request, error) {
	var out []domain.Request
	for _, r := range f.requests {
		if r.CreatedBy == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateFields(ctx context.Context, id string, quantity int32, urgency domain.Urgency, notes string) (domain.Request, error) {
	r, ok := f.requests[id]
	if !ok {
		return domain.Request{}, apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	if r.Status != domain.StatusPending {
		return domain.Request{}, apperr.InvalidTransition("REQUEST_NOT_PENDING", "only pending requests can be edited")
	}
	r.Quantity = quantity
	r.Urgency = urgency
	r.NotesFromRequester = notes
	return *r, nil
}

func (f *fakeRequestRepo) TransitionTx(ctx context.Context, id string, target domain.Status, d Decision) (domain.Request, error) {
	r, ok := f.requests[id]
	if !ok {
		return domain.Request{}, apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	if !domain.CanTransition(r.Status, target) {
		return domain.Request{}, apperr.Newf(apperr.KindInvalidTransition, "INVALID_STATUS_TRANSITION",
			"cannot transition request from %s to %s", r.Status, target)
	}
	r.Status = target
	r.SupplierQuote = d.SupplierQuote
	r.RejectionReason = d.RejectionReason
	if d.NotesFromSupplier != "" {
		r.NotesFromSupplier = d.NotesFromSupplier
	}
	return *r, nil
}

func (f *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.requests[id]; !ok {
		return apperr.NotFound("REQUEST_NOT_FOUND", "request not found")
	}
	delete(f.requests, id)
	return nil
}

type fakeStockByID struct {
	lines map[string]stockdomain.StockLine
}

func (f *fakeStockByID) GetByID(ctx context.Context, id string) (stockdomain.StockLine, error) {
	line, ok := f.lines[id]
	if !ok {
		return stockdomain.StockLine{}, apperr.NotFound("STOCK_LINE_NOT_FOUND", "stock line not found")
	}
	return line, nil
}

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

var (
	requester = identity.Actor{UserID: "req-user", Role: identity.RoleInventoryManager}
	admin     = identity.Actor{UserID: "admin-user", Role: identity.RoleAdmin}
	supplier  = identity.Actor{UserID: "sup-user", Role: identity.RoleSupplier, SupplierID: "sup-1"}
	customer  = identity.Actor{UserID: "cust-user", Role: identity.RoleCustomer}
)

func newTestService(t *testing.T) (*Service, *fakeRequestRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeRequestRepo()
	stock := &fakeStockByID{lines: map[string]stockdomain.StockLine{
		"sl-1": {ID: "sl-1", SupplierID: "sup-1", ProductName: "Widget", ProductSKU: "W-1"},
	}}
	notifier := &recordingNotifier{}
	svc := NewService(repo, stock, notifier, slog.New(slog.DiscardHandler))
	return svc, repo, notifier
}

func createPending(t *testing.T, svc *Service) domain.Request {
	t.Helper()
	req, err := svc.Create(context.Background(), requester, CreateInput{
		StockLineID: "sl-1", Quantity: 20, Urgency: "high",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return req
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("staff creates pending request and supplier is notified", func(t *testing.T) {
		svc, _, notifier := newTestService(t)
		req := createPending(t, svc)
		if req.Status != domain.StatusPending {
			t.Errorf("expected pending, got %s", req.Status)
		}
		if req.SupplierID != "sup-1" {
			t.Errorf("expected supplier resolved from stock line, got %q", req.SupplierID)
		}
		if len(notifier.sent) != 1 || notifier.sent[0].RecipientSupplierID != "sup-1" {
			t.Errorf("expected one notification to the supplier, got %+v", notifier.sent)
		}
	})

	t.Run("customer forbidden", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Create(ctx, customer, CreateInput{StockLineID: "sl-1", Quantity: 1})
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("quantity below one rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Create(ctx, requester, CreateInput{StockLineID: "sl-1", Quantity: 0})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("notification failure does not fail creation", func(t *testing.T) {
		svc, _, notifier := newTestService(t)
		notifier.err = errors.New("broker down")
		req, err := svc.Create(ctx, requester, CreateInput{StockLineID: "sl-1", Quantity: 5})
		if err != nil {
			t.Fatalf("create must survive notification failure: %v", err)
		}
		if req.Status != domain.StatusPending {
			t.Errorf("expected pending, got %s", req.Status)
		}
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("approve without quote rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		_, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved"})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("approve with quote persists it", func(t *testing.T) {
		svc, _, notifier := newTestService(t)
		req := createPending(t, svc)
		quote := int64(100)
		updated, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote})
		if err != nil {
			t.Fatalf("approve failed: %v", err)
		}
		if updated.Status != domain.StatusApproved {
			t.Errorf("expected approved, got %s", updated.Status)
		}
		if updated.SupplierQuote == nil || *updated.SupplierQuote != 100 {
			t.Errorf("expected quote 100 persisted, got %v", updated.SupplierQuote)
		}
		// Creation notified the supplier; the decision notifies the requester.
		if len(notifier.sent) != 2 || notifier.sent[1].RecipientUserID != requester.UserID {
			t.Errorf("expected decision notification to requester, got %+v", notifier.sent)
		}
	})

	t.Run("negative quote rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		quote := int64(-1)
		_, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("reject requires reason", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		_, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "rejected", RejectionReason: "   "})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}

		updated, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "rejected", RejectionReason: "cannot source"})
		if err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		if updated.Status != domain.StatusRejected || updated.RejectionReason != "cannot source" {
			t.Errorf("unexpected request state: %+v", updated)
		}
	})

	t.Run("only the owning supplier may decide", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		quote := int64(50)

		otherSupplier := identity.Actor{UserID: "other", Role: identity.RoleSupplier, SupplierID: "sup-2"}
		_, err := svc.Decide(ctx, otherSupplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote})
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized for other supplier, got %v", err)
		}

		_, err = svc.Decide(ctx, requester, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote})
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized for requester, got %v", err)
		}
	})

	t.Run("decided requests are terminal", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		quote := int64(100)
		if _, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote}); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "rejected", RejectionReason: "changed my mind"})
		if apperr.KindOf(err) != apperr.KindInvalidTransition {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})

	t.Run("cancel is not a supplier decision", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		_, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "cancelled"})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("requester cancels while pending", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		updated, err := svc.Cancel(ctx, requester, req.ID)
		if err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if updated.Status != domain.StatusCancelled {
			t.Errorf("expected cancelled, got %s", updated.Status)
		}
	})

	t.Run("supplier cannot cancel", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		_, err := svc.Cancel(ctx, supplier, req.ID)
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("cancel after decision rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		quote := int64(10)
		if _, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote}); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Cancel(ctx, requester, req.ID)
		if apperr.KindOf(err) != apperr.KindInvalidTransition {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("pending request editable by requester", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		updated, err := svc.Update(ctx, requester, req.ID, UpdateInput{Quantity: 30, Urgency: "low", NotesFromRequester: "no rush"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Quantity != 30 || updated.Urgency != domain.UrgencyLow {
			t.Errorf("unexpected updated request: %+v", updated)
		}
	})

	t.Run("decided request not editable", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		quote := int64(10)
		if _, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote}); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Update(ctx, requester, req.ID, UpdateInput{Quantity: 5, Urgency: "low"})
		if apperr.KindOf(err) != apperr.KindInvalidTransition {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes cancelled request", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		req := createPending(t, svc)
		if _, err := svc.Cancel(ctx, requester, req.ID); err != nil {
			t.Fatal(err)
		}
		if err := svc.Delete(ctx, admin, req.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, ok := repo.requests[req.ID]; ok {
			t.Error("expected request to be removed")
		}
	})

	t.Run("approved request never deletable", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		quote := int64(10)
		if _, err := svc.Decide(ctx, supplier, req.ID, DecideInput{Status: "approved", SupplierQuote: &quote}); err != nil {
			t.Fatal(err)
		}
		if err := svc.Delete(ctx, admin, req.ID); apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := createPending(t, svc)
		if err := svc.Delete(ctx, requester, req.ID); apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}
