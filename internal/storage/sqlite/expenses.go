package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

// CreateExpense persists an expense and its splits.
// Callers that need both to appear atomically run this inside InTx.
func (s *queries) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, amount, paid_by, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, money.Format(expense.Amount),
		expense.PaidBy, string(expense.SplitType), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID
		_, err = s.q.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expense.ID, split.UserID, money.Format(split.Amount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *queries) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, split_type, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	splits, err := s.listSplits(ctx, "SELECT expense_id, user_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY rowid", expenseID)
	if err != nil {
		return nil, err
	}
	expense.Splits = splits
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group, oldest first.
func (s *queries) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, split_type, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splits, err := s.listSplits(ctx,
		`SELECT s.expense_id, s.user_id, s.amount FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? ORDER BY s.rowid`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	for _, split := range splits {
		if expense, ok := byID[split.ExpenseID]; ok {
			expense.Splits = append(expense.Splits, split)
		}
	}

	return expenses, nil
}

// DeleteExpense removes an expense and, by cascade, its splits.
func (s *queries) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

func (s *queries) listSplits(ctx context.Context, query string, args ...any) ([]models.Split, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.ExpenseID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return splits, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var splitType string
	err := row.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
		&expense.PaidBy, &splitType, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}
	expense.SplitType = models.SplitType(splitType)
	return expense, nil
}
