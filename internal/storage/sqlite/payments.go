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

const historyColumns = `id, settlement_id, group_id, paid_by, received_by, amount, payment_mode,
	requested_at, confirmed_at`

// CreatePaymentHistory appends a history entry for a confirmed settlement.
func (s *queries) CreatePaymentHistory(ctx context.Context, entry *models.PaymentHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO payment_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SettlementID, entry.GroupID, entry.PaidBy, entry.ReceivedBy,
		money.Format(entry.Amount), string(entry.PaymentMode), entry.RequestedAt, entry.ConfirmedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("settlement %s already in history: %w", entry.SettlementID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert payment history: %w", err)
	}
	return nil
}

// ListPaymentHistoryByUser returns entries where the user paid or received.
func (s *queries) ListPaymentHistoryByUser(ctx context.Context, userID string) ([]*models.PaymentHistory, error) {
	return s.listHistory(ctx,
		`SELECT `+historyColumns+` FROM payment_history
		 WHERE paid_by = ? OR received_by = ?
		 ORDER BY confirmed_at DESC, rowid DESC`,
		userID, userID,
	)
}

// ListPaymentHistoryByGroup returns the history entries of a group.
func (s *queries) ListPaymentHistoryByGroup(ctx context.Context, groupID string) ([]*models.PaymentHistory, error) {
	return s.listHistory(ctx,
		`SELECT `+historyColumns+` FROM payment_history
		 WHERE group_id = ?
		 ORDER BY confirmed_at DESC, rowid DESC`,
		groupID,
	)
}

func (s *queries) listHistory(ctx context.Context, query string, args ...any) ([]*models.PaymentHistory, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment history: %w", err)
	}
	defer rows.Close()

	var entries []*models.PaymentHistory
	for rows.Next() {
		entry := &models.PaymentHistory{}
		var mode string
		if err := rows.Scan(&entry.ID, &entry.SettlementID, &entry.GroupID, &entry.PaidBy,
			&entry.ReceivedBy, &entry.Amount, &mode, &entry.RequestedAt, &entry.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment history: %w", err)
		}
		entry.PaymentMode = models.PaymentMode(mode)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment history: %w", err)
	}
	return entries, nil
}

// CreatePayment persists a UPI payment initiation.
func (s *queries) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO payments (id, payer_id, receiver_id, amount, upi_id, status, transaction_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.PayerID, payment.ReceiverID, money.Format(payment.Amount),
		payment.UPIID, string(payment.Status), payment.TransactionRef, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *queries) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment := &models.Payment{}
	var status string
	err := s.q.QueryRowContext(ctx,
		`SELECT id, payer_id, receiver_id, amount, upi_id, status, transaction_ref, created_at
		 FROM payments WHERE id = ?`,
		paymentID,
	).Scan(&payment.ID, &payment.PayerID, &payment.ReceiverID, &payment.Amount,
		&payment.UPIID, &status, &payment.TransactionRef, &payment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	payment.Status = models.PaymentStatus(status)
	return payment, nil
}

// UpdatePaymentStatus moves a payment out of the from status.
func (s *queries) UpdatePaymentStatus(ctx context.Context, paymentID string, from, to models.PaymentStatus, transactionRef string) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE payments SET status = ?, transaction_ref = ? WHERE id = ? AND status = ?",
		string(to), transactionRef, paymentID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("payment %s is no longer %s: %w", paymentID, from, err)
	}
	return nil
}
