package calculator

import (
	"github.com/shopspring/decimal"
)

// ExpenseForBalance is the minimal information about an expense needed for balances.
type ExpenseForBalance struct {
	ID     string
	PaidBy string
	Amount decimal.Decimal
}

// SplitForBalance is one member's owed share of an expense.
type SplitForBalance struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
}

// Transfer is a confirmed payment from a debtor to a creditor.
type Transfer struct {
	From   string // who paid (debtor settling up)
	To     string // who received (creditor being paid)
	Amount decimal.Decimal
}

// MemberBalance is the balance information for one group member.
type MemberBalance struct {
	UserID string
	Paid   decimal.Decimal // expenses paid plus settlements sent
	Owed   decimal.Decimal // split shares plus settlements received
	Net    decimal.Decimal // Paid - Owed. Positive = owed money, negative = owes money
}

// ComputeBalances aggregates expenses and splits into one balance per member.
// The payer of an expense is credited its full amount and every split debits its
// member. Members appear in the order given, then any member only seen in the records,
// in order of first appearance. The order drives settlement planning.
//
// For splits that add up to their expense amounts the nets sum to exactly zero.
func ComputeBalances(members []string, expenses []ExpenseForBalance, splits []SplitForBalance) []MemberBalance {
	l := newLedger(members)
	for _, e := range expenses {
		b := l.get(e.PaidBy)
		b.Paid = b.Paid.Add(e.Amount)
	}
	for _, s := range splits {
		b := l.get(s.UserID)
		b.Owed = b.Owed.Add(s.Amount)
	}
	return l.balances()
}

// ApplyTransfers returns balances with confirmed payments taken into account: the
// payer's balance improves and the receiver's decreases by the amount.
func ApplyTransfers(balances []MemberBalance, transfers []Transfer) []MemberBalance {
	l := newLedger(nil)
	for _, b := range balances {
		cp := b
		l.put(&cp)
	}
	for _, t := range transfers {
		from := l.get(t.From)
		from.Paid = from.Paid.Add(t.Amount)
		to := l.get(t.To)
		to.Owed = to.Owed.Add(t.Amount)
	}
	return l.balances()
}

// NetTotal sums all nets. It is zero for a consistent ledger.
func NetTotal(balances []MemberBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Net)
	}
	return total
}

// ledger keeps balances in insertion order.
type ledger struct {
	order []string
	byID  map[string]*MemberBalance
}

func newLedger(members []string) *ledger {
	l := &ledger{byID: make(map[string]*MemberBalance)}
	for _, m := range members {
		l.get(m)
	}
	return l
}

func (l *ledger) get(userID string) *MemberBalance {
	if b, ok := l.byID[userID]; ok {
		return b
	}
	b := &MemberBalance{UserID: userID}
	l.put(b)
	return b
}

func (l *ledger) put(b *MemberBalance) {
	if _, ok := l.byID[b.UserID]; !ok {
		l.order = append(l.order, b.UserID)
	}
	l.byID[b.UserID] = b
}

func (l *ledger) balances() []MemberBalance {
	out := make([]MemberBalance, 0, len(l.order))
	for _, id := range l.order {
		b := l.byID[id]
		b.Net = b.Paid.Sub(b.Owed)
		out = append(out, *b)
	}
	return out
}
