package domain

// StockIssue is one detected shortfall at checkout time. Checkout collects
// every issue before aborting so the caller can resolve all of them in one
// round trip.
type StockIssue struct {
	ProductID  string `json:"product_id"`
	SupplierID string `json:"supplier_id"`
	Requested  int32  `json:"requested"`
	Available  int32  `json:"available"`
}

type QuoteLine struct {
	ProductID  string
	SupplierID string
	Name       string
	Quantity   int32
	UnitPrice  int64
	LineTotal  int64
}

// Quote is a read-only price preview computed from live stock line prices.
// It carries no reservation; only Checkout holds stock.
type Quote struct {
	Lines []QuoteLine
	Total int64
}

type ShippingQuote struct {
	Cost    int64
	ETADays int32
}
