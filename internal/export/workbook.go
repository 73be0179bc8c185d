// Package export renders group reports as XLSX workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amrita-prog/Paynion-Project/internal/calculator"
	"github.com/amrita-prog/Paynion-Project/internal/models"
)

const (
	SheetBalances    = "Balances"
	SheetSettlements = "Settlements"
	SheetHistory     = "History"
)

// GroupReport is everything the workbook shows about one group.
type GroupReport struct {
	Group       *models.Group
	Names       map[string]string // user ID -> display name
	Balances    []calculator.MemberBalance
	Settlements []*models.Settlement
	History     []*models.PaymentHistory
}

func (r *GroupReport) name(userID string) string {
	if n, ok := r.Names[userID]; ok && n != "" {
		return n
	}
	return userID
}

// Workbook renders the report as XLSX bytes with one sheet each for balances,
// settlements and payment history.
func Workbook(r *GroupReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBalances); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, sheet := range []string{SheetSettlements, SheetHistory} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	balances := [][]any{{"Member", "Paid", "Owed", "Net"}}
	for _, b := range r.Balances {
		balances = append(balances, []any{
			r.name(b.UserID), b.Paid.InexactFloat64(), b.Owed.InexactFloat64(), b.Net.InexactFloat64(),
		})
	}

	settlements := [][]any{{"Payer", "Receiver", "Amount", "Status", "Mode", "Created", "Settled"}}
	for _, s := range r.Settlements {
		settlements = append(settlements, []any{
			r.name(s.PayerID), r.name(s.ReceiverID), s.Amount.InexactFloat64(),
			string(s.Status), string(s.PaymentMode), timestamp(s.CreatedAt), timestamp(s.SettledAt),
		})
	}

	history := [][]any{{"Paid by", "Received by", "Amount", "Mode", "Requested", "Confirmed"}}
	for _, h := range r.History {
		history = append(history, []any{
			r.name(h.PaidBy), r.name(h.ReceivedBy), h.Amount.InexactFloat64(),
			string(h.PaymentMode), timestamp(h.RequestedAt), timestamp(h.ConfirmedAt),
		})
	}

	sheets := []struct {
		name        string
		rows        [][]any
		amountCols  string
		widthLetter string
	}{
		{SheetBalances, balances, "B:D", "D"},
		{SheetSettlements, settlements, "C:C", "G"},
		{SheetHistory, history, "C:C", "F"},
	}
	for _, sh := range sheets {
		if err := f.SetColStyle(sh.name, sh.amountCols, styles.amount); err != nil {
			return nil, fmt.Errorf("style %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh.name, sh.rows, styles); err != nil {
			return nil, err
		}
		_ = f.SetColWidth(sh.name, "A", sh.widthLetter, 18)
	}

	if r.Group != nil {
		_ = f.SetDocProps(&excelize.DocProperties{
			Title:   r.Group.Title,
			Creator: "Paynion",
		})
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	header int
	amount int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return styles{}, fmt.Errorf("header style: %w", err)
	}
	// built-in format 2 is "0.00"
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return styles{}, fmt.Errorf("amount style: %w", err)
	}
	return styles{header: header, amount: amount}, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, st styles) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, st.header)
}

func timestamp(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
