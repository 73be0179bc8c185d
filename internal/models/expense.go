package models

import "github.com/shopspring/decimal"

// SplitType is how an expense was divided among members.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitCustom     SplitType = "custom"
	SplitItemized   SplitType = "itemized"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitCustom, SplitItemized:
		return true
	}
	return false
}

// Expense is one payment made by a member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// Description is a short title, often extracted from a scanned bill.
	Description string

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// SplitType records how Splits were produced.
	SplitType SplitType

	// Splits are the per-member shares. They sum to Amount.
	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one member's share of an expense.
type Split struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
}
