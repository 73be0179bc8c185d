// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/amrita-prog/Paynion-Project/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write loses against a concurrent one: a unique
	// constraint was hit or a conditional update found the record in another state.
	ErrConflict = errors.New("conflict")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no account uses email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users keyed by ID. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser writes the profile fields (display name, full name, UPI id).
	UpdateUser(ctx context.Context, user *models.User) error
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup inserts the group and its members. The group.ID field is
	// populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group userID belongs to, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds users to a group. Existing members are skipped.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// SetGroupLastSettled records the time of the latest confirmed settlement.
	SetGroupLastSettled(ctx context.Context, groupID string, at int64) error
}

// ExpenseStore persists expenses together with their splits.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses, oldest first, with splits.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	DeleteExpense(ctx context.Context, expenseID string) error
}

// SettlementStore persists settlements and the history of confirmed ones.
type SettlementStore interface {
	// CreateSettlement inserts a settlement. Returns ErrConflict if the pair already
	// has an active (Pending or PaidRequested) settlement in the group.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns the group's settlements in creation order,
	// restricted to statuses when any are given.
	ListSettlementsByGroup(ctx context.Context, groupID string, statuses ...models.SettlementStatus) ([]*models.Settlement, error)

	// UpdateSettlement writes the lifecycle fields of settlement if its stored status
	// is still from. Returns ErrConflict otherwise.
	UpdateSettlement(ctx context.Context, settlement *models.Settlement, from models.SettlementStatus) error

	// DeleteSettlement removes a settlement if its stored status is still status.
	// Returns ErrConflict otherwise.
	DeleteSettlement(ctx context.Context, settlementID string, status models.SettlementStatus) error

	CreatePaymentHistory(ctx context.Context, entry *models.PaymentHistory) error

	// ListPaymentHistoryByUser returns entries the user paid or received, newest first.
	ListPaymentHistoryByUser(ctx context.Context, userID string) ([]*models.PaymentHistory, error)

	// ListPaymentHistoryByGroup returns the group's entries, newest first.
	ListPaymentHistoryByGroup(ctx context.Context, groupID string) ([]*models.PaymentHistory, error)
}

// PaymentStore persists UPI payment initiations.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// UpdatePaymentStatus moves a payment from one status to another and records the
	// transaction reference. Returns ErrConflict if the payment is no longer in from.
	UpdatePaymentStatus(ctx context.Context, paymentID string, from, to models.PaymentStatus, transactionRef string) error
}

// Queries is every read and write the backend supports. It is available both on the
// Store and inside a transaction.
type Queries interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore
	PaymentStore
}

// Store defines the persistence layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	Queries

	// InTx runs fn inside a single write transaction. The transaction commits when
	// fn returns nil and rolls back otherwise. Concurrent InTx calls are serialized.
	InTx(ctx context.Context, fn func(q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}
