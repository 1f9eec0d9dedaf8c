package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
	stats cache.StatsCache
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, stats cache.StatsCache) *GroupService {
	if stats == nil {
		stats = cache.NopStatsCache{}
	}
	return &GroupService{store: store, stats: stats}
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	// Drop repeated ids; the store adds the owner if missing.
	seen := make(map[string]bool, len(req.Msg.Members))
	members := make([]string, 0, len(req.Msg.Members))
	for _, m := range req.Msg.Members {
		if !seen[m] {
			seen[m] = true
			members = append(members, m)
		}
	}

	group := &models.Group{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Type:        models.GroupType(req.Msg.Type),
		OwnerID:     memberID,
		Members:     members,
		Currency:    req.Msg.Currency,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "owner_id", memberID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: group}), nil
}

// GetGroup retrieves a group by ID, with display names for members that
// have an account.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := loadGroupForMember(ctx, s.store, req.Msg.GroupID, memberID)
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		slog.Error("GetGroup failed - could not load members", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	names := make(map[string]string, len(users))
	for id, u := range users {
		names[id] = u.DisplayName
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: group, MemberNames: names}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByMember(ctx, memberID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}
	if groups == nil {
		groups = []*models.Group{}
	}

	slog.Info("ListGroups successful", "member_id", memberID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: groups}), nil
}

// UpdateGroup edits a group's name, description, type or currency. Owner only.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupID)

	group, err := loadGroupForMember(ctx, s.store, req.Msg.GroupID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !group.IsOwner(memberID) {
		return nil, toConnectError(fmt.Errorf("update group %s: %w", group.ID, ErrNotPermitted))
	}

	if req.Msg.Name != nil {
		group.Name = *req.Msg.Name
	}
	if req.Msg.Description != nil {
		group.Description = *req.Msg.Description
	}
	if req.Msg.Type != nil {
		group.Type = models.GroupType(*req.Msg.Type)
	}
	if req.Msg.Currency != nil {
		group.Currency = *req.Msg.Currency
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: group}), nil
}

// DeleteGroup removes a group and all of its expenses. Owner only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	memberID, err := requireMember(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := loadGroupForMember(ctx, s.store, req.Msg.GroupID, memberID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !group.IsOwner(memberID) {
		return nil, toConnectError(fmt.Errorf("delete group %s: %w", group.ID, ErrNotPermitted))
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}
	if err := s.stats.Invalidate(ctx, group.ID); err != nil {
		slog.Warn("Failed to invalidate stats cache", "group_id", group.ID, "error", err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
