package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

var (
	ErrNonPositiveAmount    = errors.New("amount must be greater than zero")
	ErrNoParticipants       = errors.New("must have at least one participant")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrUnknownParticipant   = errors.New("share given for someone who is not a participant")
	ErrMissingShare         = errors.New("every participant needs a share")
	ErrNegativeShare        = errors.New("shares cannot be negative")
	ErrPercentageTotal      = errors.New("total percentage must be 100")
	ErrCustomTotal          = errors.New("custom split total must equal expense amount")
	ErrZeroSubtotal         = errors.New("subtotal cannot be zero")
)

var hundred = decimal.NewFromInt(100)

// Share is one participant's portion of an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// Portion is caller input for percentage and custom splits: a percentage or an amount
// per participant.
type Portion struct {
	UserID string
	Value  decimal.Decimal
}

// Item is a line item assigned to one or more participants.
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// SplitRequest describes how an expense is divided.
type SplitRequest struct {
	Type         models.SplitType
	Amount       decimal.Decimal
	Participants []string

	// Portions carries percentages or amounts for percentage and custom splits.
	Portions []Portion

	// Items and Subtotal describe an itemized bill. A zero Subtotal is taken to be
	// the sum of the item amounts.
	Items    []Item
	Subtotal decimal.Decimal
}

// SplitExpense builds the shares for req. Every split type returns shares with two
// decimals that add up to exactly req.Amount, listed in participant order.
func SplitExpense(req SplitRequest) ([]Share, error) {
	switch req.Type {
	case models.SplitEqual:
		return EqualSplit(req.Amount, req.Participants)
	case models.SplitPercentage:
		return PercentageSplit(req.Amount, req.Participants, req.Portions)
	case models.SplitCustom:
		return CustomSplit(req.Amount, req.Participants, req.Portions)
	case models.SplitItemized:
		subtotal := req.Subtotal
		if subtotal.IsZero() {
			for _, item := range req.Items {
				subtotal = subtotal.Add(item.Amount)
			}
		}
		return ItemizedSplit(req.Items, req.Amount, subtotal, req.Participants)
	default:
		return nil, fmt.Errorf("unknown split type %q", req.Type)
	}
}

// EqualSplit divides amount evenly. Leftover cents go one each to the first
// participants, so 100.00 over three people is 33.34, 33.33, 33.33.
func EqualSplit(amount decimal.Decimal, participants []string) ([]Share, error) {
	if err := validateBase(amount, participants); err != nil {
		return nil, err
	}

	cents := money.Round(amount).Shift(money.Places).IntPart()
	n := int64(len(participants))
	base, extra := cents/n, cents%n

	shares := make([]Share, len(participants))
	for i, p := range participants {
		c := base
		if int64(i) < extra {
			c++
		}
		shares[i] = Share{UserID: p, Amount: decimal.New(c, -money.Places)}
	}
	return shares, nil
}

// PercentageSplit assigns each participant their percentage of amount. Percentages
// must add up to exactly 100. Rounding residue goes to the largest share.
func PercentageSplit(amount decimal.Decimal, participants []string, percentages []Portion) ([]Share, error) {
	if err := validateBase(amount, participants); err != nil {
		return nil, err
	}
	byUser, err := indexPortions(participants, percentages)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	shares := make([]Share, len(participants))
	for i, p := range participants {
		pct := byUser[p]
		total = total.Add(pct)
		shares[i] = Share{UserID: p, Amount: money.Round(amount.Mul(pct).Div(hundred))}
	}
	if !total.Equal(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentageTotal, total.String())
	}

	return absorbResidue(shares, money.Round(amount)), nil
}

// CustomSplit uses explicit amounts, which must add up to the expense amount.
func CustomSplit(amount decimal.Decimal, participants []string, amounts []Portion) ([]Share, error) {
	if err := validateBase(amount, participants); err != nil {
		return nil, err
	}
	byUser, err := indexPortions(participants, amounts)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	shares := make([]Share, len(participants))
	for i, p := range participants {
		v := money.Round(byUser[p])
		total = total.Add(v)
		shares[i] = Share{UserID: p, Amount: v}
	}
	if !total.Equal(money.Round(amount)) {
		return nil, fmt.Errorf("%w: shares add up to %s, expense is %s",
			ErrCustomTotal, money.Format(total), money.Format(amount))
	}
	return shares, nil
}

// ItemizedSplit computes how much each person owes for an itemized bill, including
// proportional tax:
//
//	person_total = person_subtotal × (bill_total / bill_subtotal)
//
// An item shared by several people is divided equally among them. Without items the
// total is split equally.
func ItemizedSplit(items []Item, billTotal, billSubtotal decimal.Decimal, participants []string) ([]Share, error) {
	if len(items) == 0 {
		return EqualSplit(billTotal, participants)
	}
	if err := validateBase(billTotal, participants); err != nil {
		return nil, err
	}
	if billSubtotal.IsZero() {
		return nil, ErrZeroSubtotal
	}

	subtotals := make(map[string]decimal.Decimal, len(participants))
	for _, p := range participants {
		subtotals[p] = decimal.Zero
	}
	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			continue
		}
		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(item.AssignedTo))))
		for _, person := range item.AssignedTo {
			sub, ok := subtotals[person]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, person)
			}
			subtotals[person] = sub.Add(perPerson)
		}
	}

	ratio := billTotal.Div(billSubtotal)
	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{UserID: p, Amount: money.Round(subtotals[p].Mul(ratio))}
	}
	return absorbResidue(shares, money.Round(billTotal)), nil
}

func validateBase(amount decimal.Decimal, participants []string) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		seen[p] = true
	}
	return nil
}

func indexPortions(participants []string, portions []Portion) (map[string]decimal.Decimal, error) {
	byUser := make(map[string]decimal.Decimal, len(portions))
	for _, portion := range portions {
		if _, dup := byUser[portion.UserID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, portion.UserID)
		}
		if portion.Value.IsNegative() {
			return nil, ErrNegativeShare
		}
		byUser[portion.UserID] = portion.Value
	}

	for _, p := range participants {
		if _, ok := byUser[p]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingShare, p)
		}
	}
	if len(byUser) != len(participants) {
		return nil, ErrUnknownParticipant
	}
	return byUser, nil
}

// absorbResidue adds whatever rounding left over (a few cents at most) to the largest
// share, the first one on ties, so the shares add up to total.
func absorbResidue(shares []Share, total decimal.Decimal) []Share {
	sum := decimal.Zero
	largest := 0
	for i, s := range shares {
		sum = sum.Add(s.Amount)
		if s.Amount.GreaterThan(shares[largest].Amount) {
			largest = i
		}
	}
	if residue := total.Sub(sum); !residue.IsZero() {
		shares[largest].Amount = shares[largest].Amount.Add(residue)
	}
	return shares
}
