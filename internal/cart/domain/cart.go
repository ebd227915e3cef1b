package domain

import "time"

// MaxLineQuantity caps a single cart line. Merging an add onto an existing
// line re-checks the cap; an add that would exceed it is rejected, not clamped.
const MaxLineQuantity = 10

type CartLine struct {
	ID            string
	CartID        string
	ProductID     string
	SupplierID    string
	Quantity      int32
	Price         int64
	PurchasePrice int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Cart is a user's pending selections. It carries no checkout state: a
// successful checkout simply empties it.
type Cart struct {
	ID        string
	UserID    string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Line returns the line for a (product, supplier) pairing, if present.
func (c Cart) Line(productID, supplierID string) (CartLine, bool) {
	for _, ln := range c.Lines {
		if ln.ProductID == productID && ln.SupplierID == supplierID {
			return ln, true
		}
	}
	return CartLine{}, false
}

func (c Cart) LineByID(id string) (CartLine, bool) {
	for _, ln := range c.Lines {
		if ln.ID == id {
			return ln, true
		}
	}
	return CartLine{}, false
}
