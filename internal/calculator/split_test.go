package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrita-prog/Paynion-Project/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amounts(shares []Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.Amount.StringFixed(2)
	}
	return out
}

func sumShares(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func TestSplitExpense(t *testing.T) {
	tests := []struct {
		name         string
		req          SplitRequest
		wantErr      error
		validateFunc func(t *testing.T, shares []Share)
	}{
		{
			name: "equal split with leftover cents",
			req: SplitRequest{
				Type:         models.SplitEqual,
				Amount:       d("100"),
				Participants: []string{"asha", "bilal", "chitra"},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				assert.Equal(t, []string{"33.34", "33.33", "33.33"}, amounts(shares))
				assert.Equal(t, "asha", shares[0].UserID)
			},
		},
		{
			name: "equal split divides evenly",
			req: SplitRequest{
				Type:         models.SplitEqual,
				Amount:       d("1921.50"),
				Participants: []string{"asha", "bilal"},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				assert.Equal(t, []string{"960.75", "960.75"}, amounts(shares))
			},
		},
		{
			name: "percentage split",
			req: SplitRequest{
				Type:         models.SplitPercentage,
				Amount:       d("1000"),
				Participants: []string{"asha", "bilal", "chitra"},
				Portions: []Portion{
					{UserID: "asha", Value: d("50")},
					{UserID: "bilal", Value: d("30")},
					{UserID: "chitra", Value: d("20")},
				},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				assert.Equal(t, []string{"500.00", "300.00", "200.00"}, amounts(shares))
			},
		},
		{
			name: "percentage split residue goes to the largest share",
			req: SplitRequest{
				Type:         models.SplitPercentage,
				Amount:       d("100"),
				Participants: []string{"asha", "bilal", "chitra"},
				Portions: []Portion{
					{UserID: "asha", Value: d("33.33")},
					{UserID: "bilal", Value: d("33.34")},
					{UserID: "chitra", Value: d("33.33")},
				},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				assert.Equal(t, []string{"33.33", "33.34", "33.33"}, amounts(shares))
			},
		},
		{
			name: "percentage split must total 100",
			req: SplitRequest{
				Type:         models.SplitPercentage,
				Amount:       d("100"),
				Participants: []string{"asha", "bilal"},
				Portions: []Portion{
					{UserID: "asha", Value: d("60")},
					{UserID: "bilal", Value: d("30")},
				},
			},
			wantErr: ErrPercentageTotal,
		},
		{
			name: "percentage missing for a participant",
			req: SplitRequest{
				Type:         models.SplitPercentage,
				Amount:       d("100"),
				Participants: []string{"asha", "bilal"},
				Portions:     []Portion{{UserID: "asha", Value: d("100")}},
			},
			wantErr: ErrMissingShare,
		},
		{
			name: "custom split",
			req: SplitRequest{
				Type:         models.SplitCustom,
				Amount:       d("1028"),
				Participants: []string{"asha", "bilal", "chitra"},
				Portions: []Portion{
					{UserID: "asha", Value: d("0")},
					{UserID: "bilal", Value: d("800")},
					{UserID: "chitra", Value: d("228")},
				},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				assert.Equal(t, []string{"0.00", "800.00", "228.00"}, amounts(shares))
			},
		},
		{
			name: "custom split must equal the amount",
			req: SplitRequest{
				Type:         models.SplitCustom,
				Amount:       d("1028"),
				Participants: []string{"asha", "bilal"},
				Portions: []Portion{
					{UserID: "asha", Value: d("800")},
					{UserID: "bilal", Value: d("200")},
				},
			},
			wantErr: ErrCustomTotal,
		},
		{
			name: "custom split rejects negative shares",
			req: SplitRequest{
				Type:         models.SplitCustom,
				Amount:       d("100"),
				Participants: []string{"asha", "bilal"},
				Portions: []Portion{
					{UserID: "asha", Value: d("150")},
					{UserID: "bilal", Value: d("-50")},
				},
			},
			wantErr: ErrNegativeShare,
		},
		{
			name: "custom split rejects strangers",
			req: SplitRequest{
				Type:         models.SplitCustom,
				Amount:       d("100"),
				Participants: []string{"asha"},
				Portions: []Portion{
					{UserID: "asha", Value: d("50")},
					{UserID: "zoya", Value: d("50")},
				},
			},
			wantErr: ErrUnknownParticipant,
		},
		{
			name: "itemized split with proportional tax",
			req: SplitRequest{
				Type:         models.SplitItemized,
				Amount:       d("33"),
				Participants: []string{"asha", "bilal"},
				Items: []Item{
					{Description: "Pizza", Amount: d("20"), AssignedTo: []string{"asha", "bilal"}},
					{Description: "Salad", Amount: d("10"), AssignedTo: []string{"asha"}},
				},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				// asha: (10 + 10) × 33/30 = 22, bilal: 10 × 33/30 = 11
				assert.Equal(t, []string{"22.00", "11.00"}, amounts(shares))
			},
		},
		{
			name: "itemized split without items is equal",
			req: SplitRequest{
				Type:         models.SplitItemized,
				Amount:       d("33"),
				Participants: []string{"asha", "bilal"},
			},
			validateFunc: func(t *testing.T, shares []Share) {
				assert.Equal(t, []string{"16.50", "16.50"}, amounts(shares))
			},
		},
		{
			name:    "zero amount",
			req:     SplitRequest{Type: models.SplitEqual, Amount: d("0"), Participants: []string{"asha"}},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "no participants",
			req:     SplitRequest{Type: models.SplitEqual, Amount: d("10")},
			wantErr: ErrNoParticipants,
		},
		{
			name:    "duplicate participant",
			req:     SplitRequest{Type: models.SplitEqual, Amount: d("10"), Participants: []string{"asha", "asha"}},
			wantErr: ErrDuplicateParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitExpense(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, sumShares(shares).Equal(tt.req.Amount),
				"shares sum to %s, want %s", sumShares(shares), tt.req.Amount)
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestSplitExpenseUnknownType(t *testing.T) {
	_, err := SplitExpense(SplitRequest{Type: "barter", Amount: d("10"), Participants: []string{"asha"}})
	assert.Error(t, err)
}

func TestEqualSplitAlwaysAddsUp(t *testing.T) {
	for _, amount := range []string{"0.01", "0.05", "10", "99.99", "100", "1921.50", "100000"} {
		for n := 1; n <= 7; n++ {
			participants := make([]string, n)
			for i := range participants {
				participants[i] = string(rune('a' + i))
			}
			shares, err := EqualSplit(d(amount), participants)
			require.NoError(t, err)
			assert.True(t, sumShares(shares).Equal(d(amount)), "%s over %d", amount, n)

			lo, hi := shares[0].Amount, shares[0].Amount
			for _, s := range shares {
				lo = decimal.Min(lo, s.Amount)
				hi = decimal.Max(hi, s.Amount)
			}
			assert.True(t, hi.Sub(lo).LessThanOrEqual(d("0.01")), "%s over %d", amount, n)
		}
	}
}
