package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const PaymentMethodCashOnDelivery = "cash_on_delivery"

// transitions is the full set of legal status edges. delivered and cancelled
// are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// OrderLine is an immutable snapshot taken at checkout. Product and supplier
// fields are denormalized so order history survives catalog changes.
type OrderLine struct {
	ID           string
	OrderID      string
	ProductID    string
	SupplierID   string
	Quantity     int32
	Price        int64
	ProductName  string
	ProductSKU   string
	ProductImage string
	SupplierName string
}

type Payment struct {
	OrderID     string
	Method      string
	Status      PaymentStatus
	Amount      int64
	PaymentDate *time.Time
}

type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	AddressID       string
	TotalAmount     int64
	Status          Status
	ShippingCost    *int64
	ShippingETADays *int32
	Lines           []OrderLine
	Payment         *Payment
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}
