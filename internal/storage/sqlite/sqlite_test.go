package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, name string) *models.User {
	t.Helper()
	user := models.NewUser(name+"@example.com", name, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createGroup(t *testing.T, store *SQLiteStore, members ...*models.User) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Goa Trip", CreatedBy: members[0].ID}
	for _, m := range members {
		group.Members = append(group.Members, m.ID)
	}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha := createUser(t, store, "asha")

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		assert.Equal(t, asha.ID, got.ID)
		assert.Equal(t, "asha", got.DisplayName)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := models.NewUser("asha@example.com", "Asha Again", "hash")
		err := store.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateUser stores UPI profile", func(t *testing.T) {
		asha.FullName = "Asha Rao"
		asha.UPIID = "asha@okbank"
		require.NoError(t, store.UpdateUser(ctx, asha))

		got, err := store.GetUserByID(ctx, asha.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", got.FullName)
		assert.Equal(t, "asha@okbank", got.UPIID)
	})

	t.Run("GetUsersByIDs omits unknown IDs", func(t *testing.T) {
		bilal := createUser(t, store, "bilal")
		users, err := store.GetUsersByIDs(ctx, []string{asha.ID, bilal.ID, "ghost"})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "bilal", users[bilal.ID].DisplayName)
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha, bilal, chitra := createUser(t, store, "asha"), createUser(t, store, "bilal"), createUser(t, store, "chitra")
	group := createGroup(t, store, asha, bilal)

	t.Run("GetGroup keeps member order", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Goa Trip", got.Title)
		assert.Equal(t, []string{asha.ID, bilal.ID}, got.Members)
	})

	t.Run("AddGroupMembers skips existing members", func(t *testing.T) {
		require.NoError(t, store.AddGroupMembers(ctx, group.ID, []string{bilal.ID, chitra.ID}))
		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{asha.ID, bilal.ID, chitra.ID}, got.Members)
	})

	t.Run("ListGroupsForUser", func(t *testing.T) {
		createGroup(t, store, chitra)
		groups, err := store.ListGroupsForUser(ctx, asha.ID)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, group.ID, groups[0].ID)

		groups, err = store.ListGroupsForUser(ctx, chitra.ID)
		require.NoError(t, err)
		assert.Len(t, groups, 2)
	})

	t.Run("SetGroupLastSettled", func(t *testing.T) {
		require.NoError(t, store.SetGroupLastSettled(ctx, group.ID, 1700000000))
		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), got.LastSettledAt)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.AddGroupMembers(ctx, "nonexistent-id", []string{asha.ID}), storage.ErrNotFound)
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha, bilal := createUser(t, store, "asha"), createUser(t, store, "bilal")
	group := createGroup(t, store, asha, bilal)

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Barbeque Nation",
		Amount:      decimal.RequireFromString("1921.50"),
		PaidBy:      asha.ID,
		SplitType:   models.SplitEqual,
		Splits: []models.Split{
			{UserID: asha.ID, Amount: decimal.RequireFromString("960.75")},
			{UserID: bilal.ID, Amount: decimal.RequireFromString("960.75")},
		},
	}
	require.NoError(t, store.CreateExpense(ctx, expense))
	assert.NotEmpty(t, expense.ID)

	t.Run("GetExpense returns exact amounts", func(t *testing.T) {
		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "1921.50", got.Amount.StringFixed(2))
		assert.Equal(t, models.SplitEqual, got.SplitType)
		require.Len(t, got.Splits, 2)
		assert.Equal(t, asha.ID, got.Splits[0].UserID)
		assert.Equal(t, "960.75", got.Splits[1].Amount.StringFixed(2))
	})

	t.Run("ListExpensesByGroup attaches splits", func(t *testing.T) {
		second := &models.Expense{
			GroupID: group.ID, Description: "Cab", Amount: decimal.NewFromInt(300),
			PaidBy: bilal.ID, SplitType: models.SplitCustom,
			Splits: []models.Split{{UserID: asha.ID, Amount: decimal.NewFromInt(300)}},
		}
		require.NoError(t, store.CreateExpense(ctx, second))

		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, expense.ID, expenses[0].ID)
		assert.Len(t, expenses[0].Splits, 2)
		assert.Len(t, expenses[1].Splits, 1)
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		require.NoError(t, store.DeleteExpense(ctx, expense.ID))
		_, err := store.GetExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, expense.ID), storage.ErrNotFound)
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha, bilal, chitra := createUser(t, store, "asha"), createUser(t, store, "bilal"), createUser(t, store, "chitra")
	group := createGroup(t, store, asha, bilal, chitra)

	pending := &models.Settlement{
		GroupID: group.ID, PayerID: bilal.ID, ReceiverID: asha.ID,
		Amount: decimal.RequireFromString("800"),
	}
	require.NoError(t, store.CreateSettlement(ctx, pending))
	assert.Equal(t, models.StatusPending, pending.Status)

	t.Run("one active settlement per pair", func(t *testing.T) {
		dup := &models.Settlement{
			GroupID: group.ID, PayerID: bilal.ID, ReceiverID: asha.ID,
			Amount: decimal.RequireFromString("10"),
		}
		assert.ErrorIs(t, store.CreateSettlement(ctx, dup), storage.ErrConflict)

		// the reverse direction is a different pair
		reverse := &models.Settlement{
			GroupID: group.ID, PayerID: asha.ID, ReceiverID: bilal.ID,
			Amount: decimal.RequireFromString("10"),
		}
		require.NoError(t, store.CreateSettlement(ctx, reverse))
		require.NoError(t, store.DeleteSettlement(ctx, reverse.ID, models.StatusPending))
	})

	t.Run("conditional update", func(t *testing.T) {
		pending.Status = models.StatusPaidRequested
		pending.PaymentMode = models.PaymentModeUPI
		pending.PaidRequestedAt = 1700000000
		require.NoError(t, store.UpdateSettlement(ctx, pending, models.StatusPending))

		// a second writer expecting Pending loses
		err := store.UpdateSettlement(ctx, pending, models.StatusPending)
		assert.ErrorIs(t, err, storage.ErrConflict)

		got, err := store.GetSettlement(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaidRequested, got.Status)
		assert.Equal(t, models.PaymentModeUPI, got.PaymentMode)
		assert.Equal(t, "800.00", got.Amount.StringFixed(2))
	})

	t.Run("conditional delete", func(t *testing.T) {
		err := store.DeleteSettlement(ctx, pending.ID, models.StatusPending)
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("settled records free the pair", func(t *testing.T) {
		pending.Status = models.StatusSettled
		pending.SettledAt = 1700000100
		require.NoError(t, store.UpdateSettlement(ctx, pending, models.StatusPaidRequested))

		next := &models.Settlement{
			GroupID: group.ID, PayerID: bilal.ID, ReceiverID: asha.ID,
			Amount: decimal.RequireFromString("5"),
		}
		require.NoError(t, store.CreateSettlement(ctx, next))
	})

	t.Run("filter by status", func(t *testing.T) {
		active, err := store.ListSettlementsByGroup(ctx, group.ID, models.ActiveStatuses...)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "5.00", active[0].Amount.StringFixed(2))

		all, err := store.ListSettlementsByGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("payment history", func(t *testing.T) {
		entry := &models.PaymentHistory{
			SettlementID: pending.ID, GroupID: group.ID,
			PaidBy: bilal.ID, ReceivedBy: asha.ID,
			Amount: pending.Amount, PaymentMode: models.PaymentModeUPI,
			RequestedAt: pending.PaidRequestedAt, ConfirmedAt: pending.SettledAt,
		}
		require.NoError(t, store.CreatePaymentHistory(ctx, entry))

		dup := *entry
		dup.ID = ""
		assert.ErrorIs(t, store.CreatePaymentHistory(ctx, &dup), storage.ErrConflict)

		for _, userID := range []string{asha.ID, bilal.ID} {
			entries, err := store.ListPaymentHistoryByUser(ctx, userID)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "800.00", entries[0].Amount.StringFixed(2))
		}
		entries, err := store.ListPaymentHistoryByUser(ctx, chitra.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		entries, err = store.ListPaymentHistoryByGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestInTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha, bilal := createUser(t, store, "asha"), createUser(t, store, "bilal")
	group := createGroup(t, store, asha, bilal)

	t.Run("rollback on error", func(t *testing.T) {
		err := store.InTx(ctx, func(q storage.Queries) error {
			s := &models.Settlement{GroupID: group.ID, PayerID: bilal.ID, ReceiverID: asha.ID, Amount: decimal.NewFromInt(1)}
			if err := q.CreateSettlement(ctx, s); err != nil {
				return err
			}
			return storage.ErrConflict
		})
		assert.ErrorIs(t, err, storage.ErrConflict)

		all, err := store.ListSettlementsByGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("concurrent transactions never duplicate a pair", func(t *testing.T) {
		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = store.InTx(ctx, func(q storage.Queries) error {
					active, err := q.ListSettlementsByGroup(ctx, group.ID, models.ActiveStatuses...)
					if err != nil || len(active) > 0 {
						return err
					}
					return q.CreateSettlement(ctx, &models.Settlement{
						GroupID: group.ID, PayerID: bilal.ID, ReceiverID: asha.ID, Amount: decimal.NewFromInt(1),
					})
				})
			}()
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		all, err := store.ListSettlementsByGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asha, bilal := createUser(t, store, "asha"), createUser(t, store, "bilal")
	payment := &models.Payment{
		PayerID: bilal.ID, ReceiverID: asha.ID,
		Amount: decimal.RequireFromString("228"), UPIID: "asha@okbank",
	}
	require.NoError(t, store.CreatePayment(ctx, payment))
	assert.Equal(t, models.PaymentPending, payment.Status)

	require.NoError(t, store.UpdatePaymentStatus(ctx, payment.ID, models.PaymentPending, models.PaymentSuccess, "UTR123"))
	err := store.UpdatePaymentStatus(ctx, payment.ID, models.PaymentPending, models.PaymentFailed, "")
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := store.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, got.Status)
	assert.Equal(t, "UTR123", got.TransactionRef)
	assert.Equal(t, "228.00", got.Amount.StringFixed(2))

	_, err = store.GetPayment(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepeatPlaceholder(t *testing.T) {
	assert.Equal(t, "", repeatPlaceholder(0))
	assert.Equal(t, "?", repeatPlaceholder(1))
	assert.Equal(t, "?, ?, ?", repeatPlaceholder(3))
}
