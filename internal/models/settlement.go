package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	// StatusPending is a computed debt nobody has acted on yet.
	StatusPending SettlementStatus = "PENDING"
	// StatusPaidRequested means the payer claims to have paid and awaits confirmation.
	StatusPaidRequested SettlementStatus = "PAID_REQUESTED"
	// StatusSettled is terminal. The record is never modified again.
	StatusSettled SettlementStatus = "SETTLED"
)

// ActiveStatuses are the states reconciliation looks at.
var ActiveStatuses = []SettlementStatus{StatusPending, StatusPaidRequested}

// PaymentMode is how a settlement was paid.
type PaymentMode string

const (
	PaymentModeUPI  PaymentMode = "UPI"
	PaymentModeCash PaymentMode = "CASH"
)

// Valid reports whether m is an accepted payment mode.
func (m PaymentMode) Valid() bool {
	return m == PaymentModeUPI || m == PaymentModeCash
}

// Settlement represents a transfer from a debtor (payer) to a creditor (receiver).
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// PayerID is the member who owes and pays.
	PayerID string

	// ReceiverID is the member who is owed and receives.
	ReceiverID string

	// Amount is fixed when the record is created.
	Amount decimal.Decimal

	// Status is the current lifecycle state.
	Status SettlementStatus

	// PaymentMode is set when the payer requests confirmation. Empty before that.
	PaymentMode PaymentMode

	// CreatedAt is the Unix timestamp when the settlement was created.
	CreatedAt int64

	// PaidRequestedAt is set by RequestPayment and cleared by RejectPayment.
	PaidRequestedAt int64

	// SettledAt is set by ConfirmPayment.
	SettledAt int64
}

// IsActive reports whether reconciliation may still see this record.
func (s *Settlement) IsActive() bool {
	return s.Status == StatusPending || s.Status == StatusPaidRequested
}

// PaymentHistory is the immutable record of a confirmed settlement.
type PaymentHistory struct {
	ID           string
	SettlementID string
	GroupID      string
	PaidBy       string
	ReceivedBy   string
	Amount       decimal.Decimal
	PaymentMode  PaymentMode
	RequestedAt  int64
	ConfirmedAt  int64
}
