package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

func ParseUrgency(s string) (Urgency, bool) {
	switch Urgency(s) {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return Urgency(s), true
	}
	return "", false
}

// CanTransition: pending fans out to the three terminal states; nothing
// leaves a terminal state, including back to pending.
func CanTransition(from, to Status) bool {
	return from == StatusPending &&
		(to == StatusApproved || to == StatusRejected || to == StatusCancelled)
}

func (s Status) IsTerminal() bool { return s != StatusPending }

// Request is an internal-to-supplier restock ask, independent of customer
// orders. Approval records a quote but does not touch the stock ledger;
// fulfillment is a separate future step.
type Request struct {
	ID                 string
	StockLineID        string
	SupplierID         string
	Quantity           int32
	Urgency            Urgency
	Status             Status
	NotesFromRequester string
	NotesFromSupplier  string
	SupplierQuote      *int64
	RejectionReason    string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Deletable: approved and rejected requests are the audit trail and can
// never be deleted.
func (r Request) Deletable() bool {
	return r.Status == StatusPending || r.Status == StatusCancelled
}

func (r Request) Editable() bool { return r.Status == StatusPending }
