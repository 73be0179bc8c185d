package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/models"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
)

var errMissingTitle = errors.New("group title is required")

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

var _ GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the caller and the listed members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"title", req.Msg.Title,
		"members_count", len(req.Msg.MemberEmails),
		"user_id", userID,
	)

	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		return nil, invalidArgument(errMissingTitle)
	}

	var (
		group *models.Group
		users map[string]*models.User
	)
	err = s.store.InTx(ctx, func(q storage.Queries) error {
		memberIDs, err := usersByEmail(ctx, q, req.Msg.MemberEmails)
		if err != nil {
			return err
		}

		group = &models.Group{
			Title:       title,
			Description: strings.TrimSpace(req.Msg.Description),
			CreatedBy:   userID,
			Members:     []string{userID},
		}
		for _, id := range memberIDs {
			if id != userID {
				group.Members = append(group.Members, id)
			}
		}
		if err := q.CreateGroup(ctx, group); err != nil {
			return err
		}

		users, err = q.GetUsersByIDs(ctx, group.Members)
		return err
	})
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return connect.NewResponse(&GroupResponse{Group: toGroup(group, users)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GroupResponse{Group: toGroup(group, users)}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Members...)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroup(g, users))
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&ListGroupsResponse{Groups: out}), nil
}

// AddMembers adds accounts to a group. Any member may invite.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[AddMembersRequest]) (*connect.Response[GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.MemberEmails),
	)

	var (
		group *models.Group
		users map[string]*models.User
	)
	err = s.store.InTx(ctx, func(q storage.Queries) error {
		if _, err := memberGroup(ctx, q, req.Msg.GroupID, userID); err != nil {
			return err
		}
		ids, err := usersByEmail(ctx, q, req.Msg.MemberEmails)
		if err != nil {
			return err
		}
		if err := q.AddGroupMembers(ctx, req.Msg.GroupID, ids); err != nil {
			return err
		}

		if group, err = q.GetGroup(ctx, req.Msg.GroupID); err != nil {
			return err
		}
		users, err = q.GetUsersByIDs(ctx, group.Members)
		return err
	})
	if err != nil {
		slog.Error("AddMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Members added", "group_id", group.ID, "members", len(group.Members))
	return connect.NewResponse(&GroupResponse{Group: toGroup(group, users)}), nil
}

// GetGroupBalances returns every member's paid, owed and net amounts, with confirmed
// settlements already applied.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	balances, err := settlement.GroupBalances(ctx, s.store, group)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetGroupBalancesResponse{Balances: toBalances(balances, users)}), nil
}
