package domain

import "time"

// StockLine is the (product, supplier) inventory record — the unit of
// reservation. stock_level never goes negative: the only writers are the
// checkout decrement, the cancellation release and external restock.
type StockLine struct {
	ID            string
	ProductID     string
	SupplierID    string
	ProductName   string
	ProductSKU    string
	ProductImage  string
	SupplierName  string
	StockLevel    int32
	Price         int64
	PurchasePrice int64
	DiscountPrice *int64
	LeadTimeDays  int32
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// EffectivePrice is the price charged at checkout: the discount price when
// one is set, the list price otherwise.
func (l StockLine) EffectivePrice() int64 {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.Price
}

// Sellable reports whether the line can be added to a cart at all.
func (l StockLine) Sellable() bool {
	return l.IsActive && l.DeletedAt == nil
}
