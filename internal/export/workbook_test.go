package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amrita-prog/Paynion-Project/internal/calculator"
	"github.com/amrita-prog/Paynion-Project/internal/models"
)

func TestWorkbook(t *testing.T) {
	d := decimal.RequireFromString
	report := &GroupReport{
		Group: &models.Group{ID: "g1", Title: "Goa Trip"},
		Names: map[string]string{"a": "Asha", "b": "Bilal", "c": "Chitra"},
		Balances: []calculator.MemberBalance{
			{UserID: "a", Paid: d("1028"), Owed: d("0"), Net: d("1028")},
			{UserID: "b", Paid: d("0"), Owed: d("800"), Net: d("-800")},
			{UserID: "c", Paid: d("0"), Owed: d("228"), Net: d("-228")},
		},
		Settlements: []*models.Settlement{
			{PayerID: "b", ReceiverID: "a", Amount: d("800"), Status: models.StatusSettled, PaymentMode: models.PaymentModeUPI, CreatedAt: 1700000000, SettledAt: 1700003600},
			{PayerID: "c", ReceiverID: "a", Amount: d("228.50"), Status: models.StatusPending, CreatedAt: 1700000000},
		},
		History: []*models.PaymentHistory{
			{PaidBy: "b", ReceivedBy: "a", Amount: d("800"), PaymentMode: models.PaymentModeUPI, RequestedAt: 1700000000, ConfirmedAt: 1700003600},
		},
	}

	data, err := Workbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetBalances, SheetSettlements, SheetHistory}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	amount := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell, raw)
		require.NoError(t, err)
		return decimal.RequireFromString(v).StringFixed(2)
	}
	text := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	t.Run("balances", func(t *testing.T) {
		assert.Equal(t, "Member", text(SheetBalances, "A1"))
		assert.Equal(t, "Asha", text(SheetBalances, "A2"))
		assert.Equal(t, "1028.00", amount(SheetBalances, "D2"))
		assert.Equal(t, "Chitra", text(SheetBalances, "A4"))
		assert.Equal(t, "-228.00", amount(SheetBalances, "D4"))
	})

	t.Run("settlements", func(t *testing.T) {
		assert.Equal(t, "Bilal", text(SheetSettlements, "A2"))
		assert.Equal(t, "Asha", text(SheetSettlements, "B2"))
		assert.Equal(t, "SETTLED", text(SheetSettlements, "D2"))
		assert.Equal(t, "UPI", text(SheetSettlements, "E2"))
		assert.Equal(t, "2023-11-14 22:13", text(SheetSettlements, "F2"))
		assert.Equal(t, "228.50", amount(SheetSettlements, "C3"))
		assert.Equal(t, "", text(SheetSettlements, "G3"))
	})

	t.Run("history", func(t *testing.T) {
		assert.Equal(t, "Paid by", text(SheetHistory, "A1"))
		assert.Equal(t, "Bilal", text(SheetHistory, "A2"))
		assert.Equal(t, "800.00", amount(SheetHistory, "C2"))
		assert.Equal(t, "2023-11-14 23:13", text(SheetHistory, "F2"))
	})
}

func TestWorkbookFallsBackToUserID(t *testing.T) {
	data, err := Workbook(&GroupReport{
		Balances: []calculator.MemberBalance{{UserID: "ghost"}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetBalances, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ghost", v)
}
