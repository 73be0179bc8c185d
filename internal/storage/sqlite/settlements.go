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

const settlementColumns = `id, group_id, payer_id, receiver_id, amount, status, payment_mode,
	created_at, paid_requested_at, settled_at`

// CreateSettlement persists a new settlement to the database.
func (s *queries) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.StatusPending
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.PayerID, settlement.ReceiverID,
		money.Format(settlement.Amount), string(settlement.Status), string(settlement.PaymentMode),
		settlement.CreatedAt, settlement.PaidRequestedAt, settlement.SettledAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("active settlement %s -> %s exists: %w",
			settlement.PayerID, settlement.ReceiverID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *queries) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`,
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves the settlements of a group in creation order.
func (s *queries) ListSettlementsByGroup(ctx context.Context, groupID string, statuses ...models.SettlementStatus) ([]*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE group_id = ?`
	args := []any{groupID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + repeatPlaceholder(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// UpdateSettlement writes status, mode and timestamps, guarded by the expected status.
func (s *queries) UpdateSettlement(ctx context.Context, settlement *models.Settlement, from models.SettlementStatus) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE settlements
		 SET status = ?, payment_mode = ?, paid_requested_at = ?, settled_at = ?
		 WHERE id = ? AND status = ?`,
		string(settlement.Status), string(settlement.PaymentMode),
		settlement.PaidRequestedAt, settlement.SettledAt,
		settlement.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("settlement %s is no longer %s: %w", settlement.ID, from, err)
	}
	return nil
}

// DeleteSettlement removes a settlement, guarded by the expected status.
func (s *queries) DeleteSettlement(ctx context.Context, settlementID string, status models.SettlementStatus) error {
	res, err := s.q.ExecContext(ctx,
		"DELETE FROM settlements WHERE id = ? AND status = ?",
		settlementID, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("settlement %s is no longer %s: %w", settlementID, status, err)
	}
	return nil
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var status, mode string
	err := row.Scan(
		&settlement.ID, &settlement.GroupID, &settlement.PayerID, &settlement.ReceiverID,
		&settlement.Amount, &status, &mode,
		&settlement.CreatedAt, &settlement.PaidRequestedAt, &settlement.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	settlement.Status = models.SettlementStatus(status)
	settlement.PaymentMode = models.PaymentMode(mode)
	return settlement, nil
}
