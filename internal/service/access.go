package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/auth"
	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
)

var errMissingGroupID = errors.New("group_id is required")

// memberGroup loads the group and checks that userID belongs to it.
func memberGroup(ctx context.Context, q storage.Queries, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument(errMissingGroupID)
	}
	group, err := q.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, errNotMember
	}
	return group, nil
}

// usersByEmail resolves member emails to user IDs in the order given, dropping repeats.
func usersByEmail(ctx context.Context, q storage.Queries, emails []string) ([]string, error) {
	seen := make(map[string]bool, len(emails))
	ids := make([]string, 0, len(emails))
	for _, raw := range emails {
		email, err := auth.NormalizeEmail(raw)
		if err != nil {
			return nil, invalidArgument(fmt.Errorf("%w: %q", auth.ErrInvalidEmail, raw))
		}
		user, err := q.GetUserByEmail(ctx, email)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("no account for %s", email))
		}
		if err != nil {
			return nil, err
		}
		if !seen[user.ID] {
			seen[user.ID] = true
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}
