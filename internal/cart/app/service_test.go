package app

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dwikikusuma/marketplace/internal/cart/domain"
	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type fakeCartRepo struct {
	carts  map[string]*domain.Cart // by user id
	nextID int

	// failCreateOnce simulates losing the unique-constraint race once.
	failCreateOnce bool
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*domain.Cart{}}
}

func (f *fakeCartRepo) Get(ctx context.Context, userID string) (domain.Cart, error) {
	c, ok := f.carts[userID]
	if !ok {
		return domain.Cart{}, sql.ErrNoRows
	}
	return *c, nil
}

func (f *fakeCartRepo) Create(ctx context.Context, userID string) (domain.Cart, error) {
	if f.failCreateOnce {
		f.failCreateOnce = false
		// Another request created the cart between our Get and Create.
		f.carts[userID] = &domain.Cart{ID: "cart-raced", UserID: userID}
		return domain.Cart{}, apperr.Conflict("DUPLICATE", "cart already exists")
	}
	f.nextID++
	c := &domain.Cart{ID: "cart-" + userID, UserID: userID}
	f.carts[userID] = c
	return *c, nil
}

func (f *fakeCartRepo) InsertLine(ctx context.Context, line domain.CartLine) error {
	for _, c := range f.carts {
		if c.ID == line.CartID {
			f.nextID++
			line.ID = "line-" + line.ProductID + "-" + line.SupplierID
			c.Lines = append(c.Lines, line)
			return nil
		}
	}
	return apperr.NotFound("CART_NOT_FOUND", "cart not found")
}

func (f *fakeCartRepo) SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int32) error {
	for _, c := range f.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines[i].Quantity = quantity
				return nil
			}
		}
	}
	return apperr.NotFound("CART_LINE_NOT_FOUND", "cart line not found")
}

func (f *fakeCartRepo) RemoveLine(ctx context.Context, cartID, lineID string) error {
	for _, c := range f.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeCartRepo) Clear(ctx context.Context, cartID string) error {
	for _, c := range f.carts {
		if c.ID == cartID {
			c.Lines = nil
		}
	}
	return nil
}

type fakeStockReader struct {
	lines map[string]stockdomain.StockLine
}

func (f *fakeStockReader) Get(ctx context.Context, productID, supplierID string) (stockdomain.StockLine, error) {
	line, ok := f.lines[productID+"|"+supplierID]
	if !ok {
		return stockdomain.StockLine{}, apperr.NotFound("STOCK_LINE_NOT_FOUND", "stock line not found")
	}
	return line, nil
}

func stockWith(productID, supplierID string, level int32, price int64) *fakeStockReader {
	return &fakeStockReader{lines: map[string]stockdomain.StockLine{
		productID + "|" + supplierID: {
			ProductID: productID, SupplierID: supplierID,
			StockLevel: level, Price: price, PurchasePrice: price / 2, IsActive: true,
		},
	}}
}

func TestAddLine(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots price at add time", func(t *testing.T) {
		svc := NewService(newFakeCartRepo(), stockWith("p1", "s1", 10, 1200))
		cart, err := svc.AddLine(ctx, "user-1", "p1", "s1", 2)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if len(cart.Lines) != 1 || cart.Lines[0].Price != 1200 {
			t.Fatalf("expected snapshotted price 1200, got %+v", cart.Lines)
		}
	})

	t.Run("merge sums quantities and keeps snapshot", func(t *testing.T) {
		repo := newFakeCartRepo()
		stock := stockWith("p1", "s1", 10, 1200)
		svc := NewService(repo, stock)

		if _, err := svc.AddLine(ctx, "user-1", "p1", "s1", 3); err != nil {
			t.Fatalf("first add failed: %v", err)
		}

		// Price moves after the first add; the merged line keeps the snapshot.
		line := stock.lines["p1|s1"]
		line.Price = 1500
		stock.lines["p1|s1"] = line

		cart, err := svc.AddLine(ctx, "user-1", "p1", "s1", 4)
		if err != nil {
			t.Fatalf("merge add failed: %v", err)
		}
		if len(cart.Lines) != 1 {
			t.Fatalf("expected a single merged line, got %d", len(cart.Lines))
		}
		if cart.Lines[0].Quantity != 7 {
			t.Errorf("expected merged quantity 7, got %d", cart.Lines[0].Quantity)
		}
		if cart.Lines[0].Price != 1200 {
			t.Errorf("merge must keep the original snapshot, got %d", cart.Lines[0].Price)
		}
	})

	t.Run("cap rejects, never clamps", func(t *testing.T) {
		svc := NewService(newFakeCartRepo(), stockWith("p1", "s1", 50, 1000))

		if _, err := svc.AddLine(ctx, "user-1", "p1", "s1", 7); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		cart, err := svc.AddLine(ctx, "user-1", "p1", "s1", 6)
		if apperr.CodeOf(err) != "QUANTITY_CAP_EXCEEDED" {
			t.Fatalf("expected QUANTITY_CAP_EXCEEDED, got %v", err)
		}
		cart, err = svc.GetOrCreate(ctx, "user-1")
		if err != nil {
			t.Fatal(err)
		}
		if cart.Lines[0].Quantity != 7 {
			t.Errorf("quantity must stay at 7, got %d", cart.Lines[0].Quantity)
		}
	})

	t.Run("rejects quantity above stock", func(t *testing.T) {
		svc := NewService(newFakeCartRepo(), stockWith("p1", "s1", 2, 1000))
		_, err := svc.AddLine(ctx, "user-1", "p1", "s1", 3)
		if apperr.CodeOf(err) != "INSUFFICIENT_STOCK" {
			t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
		}
	})

	t.Run("unknown pairing", func(t *testing.T) {
		svc := NewService(newFakeCartRepo(), &fakeStockReader{lines: map[string]stockdomain.StockLine{}})
		_, err := svc.AddLine(ctx, "user-1", "p1", "s1", 1)
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("inactive line rejected", func(t *testing.T) {
		stock := stockWith("p1", "s1", 5, 1000)
		line := stock.lines["p1|s1"]
		line.IsActive = false
		stock.lines["p1|s1"] = line

		svc := NewService(newFakeCartRepo(), stock)
		_, err := svc.AddLine(ctx, "user-1", "p1", "s1", 1)
		if apperr.CodeOf(err) != "ITEM_INACTIVE" {
			t.Fatalf("expected ITEM_INACTIVE, got %v", err)
		}
	})
}

func TestGetOrCreate_RecoversFromCreateRace(t *testing.T) {
	repo := newFakeCartRepo()
	repo.failCreateOnce = true
	svc := NewService(repo, &fakeStockReader{})

	cart, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected race recovery, got %v", err)
	}
	if cart.ID != "cart-raced" {
		t.Fatalf("expected the concurrently created cart, got %q", cart.ID)
	}
}

func TestUpdateLine(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCartRepo()
	svc := NewService(repo, stockWith("p1", "s1", 4, 1000))

	cart, err := svc.AddLine(ctx, "user-1", "p1", "s1", 2)
	if err != nil {
		t.Fatal(err)
	}
	lineID := cart.Lines[0].ID

	t.Run("revalidates stock", func(t *testing.T) {
		_, err := svc.UpdateLine(ctx, "user-1", lineID, 5)
		if apperr.CodeOf(err) != "INSUFFICIENT_STOCK" {
			t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
		}
	})

	t.Run("enforces cap", func(t *testing.T) {
		_, err := svc.UpdateLine(ctx, "user-1", lineID, 11)
		if apperr.CodeOf(err) != "QUANTITY_CAP_EXCEEDED" {
			t.Fatalf("expected QUANTITY_CAP_EXCEEDED, got %v", err)
		}
	})

	t.Run("sets absolute quantity", func(t *testing.T) {
		cart, err := svc.UpdateLine(ctx, "user-1", lineID, 4)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if cart.Lines[0].Quantity != 4 {
			t.Errorf("expected quantity 4, got %d", cart.Lines[0].Quantity)
		}
	})
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeCartRepo(), stockWith("p1", "s1", 9, 1000))

	cart, err := svc.AddLine(ctx, "user-1", "p1", "s1", 2)
	if err != nil {
		t.Fatal(err)
	}

	cart, err = svc.RemoveLine(ctx, "user-1", cart.Lines[0].ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart after remove")
	}

	if _, err := svc.AddLine(ctx, "user-1", "p1", "s1", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	cart, _ = svc.GetOrCreate(ctx, "user-1")
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
}
