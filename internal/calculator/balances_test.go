package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBalances(t *testing.T) {
	members := []string{"asha", "bilal", "chitra"}
	expenses := []ExpenseForBalance{
		{ID: "e1", PaidBy: "asha", Amount: d("1028")},
		{ID: "e2", PaidBy: "bilal", Amount: d("300")},
	}
	splits := []SplitForBalance{
		{ExpenseID: "e1", UserID: "bilal", Amount: d("800")},
		{ExpenseID: "e1", UserID: "chitra", Amount: d("228")},
		{ExpenseID: "e2", UserID: "asha", Amount: d("100")},
		{ExpenseID: "e2", UserID: "bilal", Amount: d("100")},
		{ExpenseID: "e2", UserID: "chitra", Amount: d("100")},
	}

	balances := ComputeBalances(members, expenses, splits)
	require.Len(t, balances, 3)

	want := map[string]struct{ paid, owed, net string }{
		"asha":   {"1028.00", "100.00", "928.00"},
		"bilal":  {"300.00", "900.00", "-600.00"},
		"chitra": {"0.00", "328.00", "-328.00"},
	}
	for i, b := range balances {
		assert.Equal(t, members[i], b.UserID)
		w := want[b.UserID]
		assert.Equal(t, w.paid, b.Paid.StringFixed(2), b.UserID)
		assert.Equal(t, w.owed, b.Owed.StringFixed(2), b.UserID)
		assert.Equal(t, w.net, b.Net.StringFixed(2), b.UserID)
	}
	assert.True(t, NetTotal(balances).IsZero())
}

func TestComputeBalancesKeepsMembersWithoutActivity(t *testing.T) {
	balances := ComputeBalances([]string{"asha", "bilal"}, nil, nil)
	require.Len(t, balances, 2)
	for _, b := range balances {
		assert.True(t, b.Net.IsZero())
	}
}

func TestComputeBalancesAppendsUnlistedUsers(t *testing.T) {
	balances := ComputeBalances(
		[]string{"asha"},
		[]ExpenseForBalance{{ID: "e1", PaidBy: "zoya", Amount: d("50")}},
		[]SplitForBalance{{ExpenseID: "e1", UserID: "asha", Amount: d("50")}},
	)
	require.Len(t, balances, 2)
	assert.Equal(t, "asha", balances[0].UserID)
	assert.Equal(t, "zoya", balances[1].UserID)
	assert.Equal(t, "50.00", balances[1].Net.StringFixed(2))
}

func TestApplyTransfers(t *testing.T) {
	balances := ComputeBalances(
		[]string{"asha", "bilal", "chitra"},
		[]ExpenseForBalance{{ID: "e1", PaidBy: "asha", Amount: d("1028")}},
		[]SplitForBalance{
			{ExpenseID: "e1", UserID: "bilal", Amount: d("800")},
			{ExpenseID: "e1", UserID: "chitra", Amount: d("228")},
		},
	)

	settled := ApplyTransfers(balances, []Transfer{{From: "bilal", To: "asha", Amount: d("800")}})

	require.Len(t, settled, 3)
	assert.Equal(t, "228.00", settled[0].Net.StringFixed(2))
	assert.True(t, settled[1].Net.IsZero())
	assert.Equal(t, "-228.00", settled[2].Net.StringFixed(2))
	assert.True(t, NetTotal(settled).IsZero())

	// the input is left untouched
	assert.Equal(t, "1028.00", balances[0].Net.StringFixed(2))
	assert.Equal(t, "-800.00", balances[1].Net.StringFixed(2))
}
