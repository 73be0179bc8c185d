package calculator

import "github.com/shopspring/decimal"

// Proposal is one debtor-to-creditor transfer suggested by PlanSettlements.
type Proposal struct {
	From   string // debtor
	To     string // creditor
	Amount decimal.Decimal
}

// PlanSettlements matches debtors with creditors to clear all balances.
//
// Algorithm (greedy, two cursors):
//   - Creditors (net > 0) and debtors (net < 0) keep the order of balances.
//   - The current debtor pays the current creditor min(debt, credit).
//   - A cursor advances when its remaining amount reaches exactly zero.
//
// The result has at most debtors+creditors-1 proposals. Balances must sum to zero;
// callers check that before planning.
func PlanSettlements(balances []MemberBalance) []Proposal {
	type remaining struct {
		userID string
		amount decimal.Decimal
	}

	var creditors, debtors []remaining
	for _, b := range balances {
		switch b.Net.Sign() {
		case 1:
			creditors = append(creditors, remaining{b.UserID, b.Net})
		case -1:
			debtors = append(debtors, remaining{b.UserID, b.Net.Neg()})
		}
	}

	var proposals []Proposal
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.amount, creditor.amount)
		proposals = append(proposals, Proposal{
			From:   debtor.userID,
			To:     creditor.userID,
			Amount: amount,
		})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.IsZero() {
			i++
		}
		if creditor.amount.IsZero() {
			j++
		}
	}

	return proposals
}
