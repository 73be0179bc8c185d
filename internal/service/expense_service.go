package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/calculator"
	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

var (
	errMissingDescription = errors.New("expense description is required")
	errPayerNotMember     = errors.New("payer must be a member of the group")
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

var _ ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense splits the amount between the participants and records the expense.
// Participants default to every member and the payer defaults to the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"split_type", msg.SplitType,
		"participants_count", len(msg.Participants),
	)

	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, invalidArgument(errMissingDescription)
	}
	splitType := models.SplitType(strings.ToLower(msg.SplitType))
	if msg.SplitType == "" {
		splitType = models.SplitEqual
	}
	if !splitType.Valid() {
		return nil, invalidArgument(fmt.Errorf("unknown split type %q", msg.SplitType))
	}
	msg.Amount = money.NewAmount(money.Round(msg.Amount.Decimal))
	payer := msg.PaidBy
	if payer == "" {
		payer = userID
	}

	var expense *models.Expense
	err = s.store.InTx(ctx, func(q storage.Queries) error {
		group, err := memberGroup(ctx, q, msg.GroupID, userID)
		if err != nil {
			return err
		}
		if !group.HasMember(payer) {
			return invalidArgument(errPayerNotMember)
		}

		participants := msg.Participants
		if len(participants) == 0 {
			participants = group.Members
		}
		for _, p := range participants {
			if !group.HasMember(p) {
				return invalidArgument(fmt.Errorf("%w: %s", calculator.ErrUnknownParticipant, p))
			}
		}

		shares, err := calculator.SplitExpense(splitRequest(splitType, msg, participants))
		if err != nil {
			return invalidArgument(err)
		}

		expense = &models.Expense{
			GroupID:     group.ID,
			Description: description,
			Amount:      msg.Amount.Decimal,
			PaidBy:      payer,
			SplitType:   splitType,
		}
		for _, sh := range shares {
			expense.Splits = append(expense.Splits, models.Split{UserID: sh.UserID, Amount: sh.Amount})
		}
		return q.CreateExpense(ctx, expense)
	})
	if err != nil {
		slog.Error("CreateExpense failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

func splitRequest(splitType models.SplitType, msg *CreateExpenseRequest, participants []string) calculator.SplitRequest {
	req := calculator.SplitRequest{
		Type:         splitType,
		Amount:       msg.Amount.Decimal,
		Participants: participants,
		Subtotal:     msg.Subtotal.Decimal,
	}
	for _, p := range msg.Portions {
		req.Portions = append(req.Portions, calculator.Portion{UserID: p.UserID, Value: p.Value.Decimal})
	}
	for _, item := range msg.Items {
		req.Items = append(req.Items, calculator.Item{
			Description: item.Description,
			Amount:      item.Amount.Decimal,
			AssignedTo:  item.AssignedTo,
		})
	}
	return req
}

// ListExpenses returns a group's expenses, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpense(e))
	}
	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense. Only the member who paid may delete it.
// Pending settlements pick up the change on the next reconciliation.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	err = s.store.InTx(ctx, func(q storage.Queries) error {
		expense, err := q.GetExpense(ctx, req.Msg.ExpenseID)
		if err != nil {
			return err
		}
		if expense.PaidBy != userID {
			return errNotExpensePayer
		}
		return q.DeleteExpense(ctx, expense.ID)
	})
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}
