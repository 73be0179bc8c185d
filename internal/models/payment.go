package models

import "github.com/shopspring/decimal"

// PaymentStatus is the state of a UPI payment initiation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment records a UPI payment the payer started from the app.
// It is independent of the settlement lifecycle: the app cannot observe the UPI
// transfer, so the payer still has to request confirmation on the settlement.
type Payment struct {
	ID             string
	PayerID        string
	ReceiverID     string
	Amount         decimal.Decimal
	UPIID          string
	Status         PaymentStatus
	TransactionRef string
	CreatedAt      int64
}
