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
)

// CreateGroup persists a new group with its members.
// Callers that need the group and its members to appear atomically run this inside InTx.
func (s *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO groups (id, title, description, created_by, created_at, last_settled_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID, group.Title, group.Description, group.CreatedBy, group.CreatedAt, group.LastSettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, userID := range group.Members {
		if err := s.insertMember(ctx, group.ID, userID, group.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *queries) insertMember(ctx context.Context, groupID, userID string, joinedAt int64) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, joinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members in join order.
func (s *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.q.QueryRowContext(ctx,
		`SELECT id, title, description, created_by, created_at, last_settled_at
		 FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Title, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.LastSettledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.listMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

func (s *queries) listMembers(ctx context.Context, groupID string) ([]string, error) {
	// rowid follows insertion order, which breaks ties between members added together.
	rows, err := s.q.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// ListGroupsForUser returns all groups the user is a member of.
func (s *queries) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// AddGroupMembers adds users to an existing group.
func (s *queries) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	var exists int
	err := s.q.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	now := time.Now().Unix()
	for _, userID := range userIDs {
		if err := s.insertMember(ctx, groupID, userID, now); err != nil {
			return err
		}
	}
	return nil
}

// SetGroupLastSettled updates the group's last-settled timestamp.
func (s *queries) SetGroupLastSettled(ctx context.Context, groupID string, at int64) error {
	res, err := s.q.ExecContext(ctx, "UPDATE groups SET last_settled_at = ? WHERE id = ?", at, groupID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}
