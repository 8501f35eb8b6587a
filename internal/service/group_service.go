package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend/pkg/apperror"
)

// --- DTOs ---

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type GroupResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions,omitempty"`
}

type GroupFilter struct {
	Page   int
	Limit  int
	Search string
}

// --- Interface ---

type GroupService interface {
	ListGroups(ctx context.Context, filter GroupFilter) ([]GroupResponse, int64, error)
	GetGroup(ctx context.Context, id uint, includePermissions bool) (*GroupResponse, error)
	CreateGroup(ctx context.Context, actorID string, req CreateGroupRequest) (*GroupResponse, error)
	UpdateGroup(ctx context.Context, actorID string, id uint, req UpdateGroupRequest) (*GroupResponse, error)
	DeleteGroup(ctx context.Context, actorID string, id uint) error

	ListGroupPermissions(ctx context.Context, groupID uint) ([]PermissionResponse, error)
	AddGroupPermission(ctx context.Context, actorID string, groupID, permissionID uint) error
	RemoveGroupPermission(ctx context.Context, actorID string, groupID, permissionID uint) error

	ListMembers(ctx context.Context, groupID uint) ([]string, error)
	AddMember(ctx context.Context, actorID string, groupID uint, userID string) error
	RemoveMember(ctx context.Context, actorID string, groupID uint, userID string) error
}

type groupService struct {
	groupRepo repository.GroupRepository
	permRepo  repository.PermissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	cache     *auth.Cache
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	permRepo repository.PermissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	cache *auth.Cache,
) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		permRepo:  permRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		cache:     cache,
	}
}

// --- Implementation ---

func (s *groupService) ListGroups(ctx context.Context, filter GroupFilter) ([]GroupResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	groups, total, err := s.groupRepo.List(ctx, filter.Page, filter.Limit, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list groups.")
	}

	res := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		res = append(res, toGroupResponse(g, nil))
	}
	return res, total, nil
}

func (s *groupService) GetGroup(ctx context.Context, id uint, includePermissions bool) (*GroupResponse, error) {
	group, err := s.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	var perms []model.Permission
	if includePermissions {
		perms, err = s.groupRepo.ListPermissions(ctx, id)
		if err != nil {
			return nil, apperror.FromDBError(err, "Could not fetch the group's permissions.")
		}
	}

	res := toGroupResponse(*group, perms)
	return &res, nil
}

func (s *groupService) CreateGroup(ctx context.Context, actorID string, req CreateGroupRequest) (*GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("Group name is required.")
	}
	if err := s.ensureNameUnique(ctx, name, 0); err != nil {
		return nil, err
	}

	group := model.Group{Name: name, Description: strings.TrimSpace(req.Description)}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.Create(txCtx, &group); err != nil {
			return apperror.FromDBError(err, "Could not create the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionCreateGroup, group.Name, map[string]interface{}{"id": group.ID})
	})
	if err != nil {
		return nil, err
	}

	res := toGroupResponse(group, nil)
	return &res, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, actorID string, id uint, req UpdateGroupRequest) (*GroupResponse, error) {
	if req.Name == nil && req.Description == nil {
		return nil, apperror.BadRequest("No data provided to update.")
	}

	group, err := s.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.BadRequest("Group name cannot be empty.")
		}
		if name != group.Name {
			if err := s.ensureNameUnique(ctx, name, id); err != nil {
				return nil, err
			}
			group.Name = name
		}
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.Update(txCtx, group); err != nil {
			return apperror.FromDBError(err, "Could not update the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionUpdateGroup, group.Name, map[string]interface{}{"id": id})
	})
	if err != nil {
		return nil, err
	}

	res := toGroupResponse(*group, nil)
	return &res, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, actorID string, id uint) error {
	group, err := s.findGroup(ctx, id)
	if err != nil {
		return err
	}

	members, err := s.groupRepo.CountMembers(ctx, id)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify group membership.")
	}
	if members > 0 {
		return apperror.Conflict("Cannot delete: the group still has members.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.Delete(txCtx, id); err != nil {
			return apperror.FromDBError(err, "Could not delete the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionDeleteGroup, group.Name, map[string]interface{}{"id": id})
	})
	return err
}

// --- Group permissions ---

func (s *groupService) ListGroupPermissions(ctx context.Context, groupID uint) ([]PermissionResponse, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}

	perms, err := s.groupRepo.ListPermissions(ctx, groupID)
	if err != nil {
		return nil, apperror.FromDBError(err, "Could not fetch the group's permissions.")
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *groupService) AddGroupPermission(ctx context.Context, actorID string, groupID, permissionID uint) error {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}

	perm, err := s.permRepo.FindByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Permission not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the permission.")
	}

	exists, err := s.groupRepo.HasPermission(ctx, groupID, permissionID)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify the group link.")
	}
	if exists {
		return apperror.Conflict("The group already has that permission.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		link := model.GroupPermission{GroupID: groupID, PermissionID: permissionID}
		if err := s.groupRepo.AddPermission(txCtx, &link); err != nil {
			return apperror.FromDBError(err, "Could not add the permission to the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionUpdateGroup, group.Name, map[string]interface{}{
			"group_id": groupID, "added_permission": perm.Slug,
		})
	})
	if err != nil {
		return err
	}

	s.invalidateGroupMembers(ctx, groupID)
	return nil
}

func (s *groupService) RemoveGroupPermission(ctx context.Context, actorID string, groupID, permissionID uint) error {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}

	exists, err := s.groupRepo.HasPermission(ctx, groupID, permissionID)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify the group link.")
	}
	if !exists {
		return apperror.NotFound("The group does not have that permission.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.RemovePermission(txCtx, groupID, permissionID); err != nil {
			return apperror.FromDBError(err, "Could not remove the permission from the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionUpdateGroup, group.Name, map[string]interface{}{
			"group_id": groupID, "removed_permission": permissionID,
		})
	})
	if err != nil {
		return err
	}

	s.invalidateGroupMembers(ctx, groupID)
	return nil
}

// --- Members ---

func (s *groupService) ListMembers(ctx context.Context, groupID uint) ([]string, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}

	ids, err := s.groupRepo.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, apperror.FromDBError(err, "Could not fetch the group's members.")
	}
	return ids, nil
}

func (s *groupService) AddMember(ctx context.Context, actorID string, groupID uint, userID string) error {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperror.BadRequest("Invalid user id.")
	}

	exists, err := s.groupRepo.HasMember(ctx, groupID, userID)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify group membership.")
	}
	if exists {
		return apperror.Conflict("The user already belongs to the group.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		member := model.UserGroup{UserID: uid, GroupID: groupID}
		if err := s.groupRepo.AddMember(txCtx, &member); err != nil {
			return apperror.FromDBError(err, "Could not add the user to the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionAddGroupMember, group.Name, map[string]interface{}{
			"group_id": groupID, "user_id": userID,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(userID)
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, actorID string, groupID uint, userID string) error {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}

	exists, err := s.groupRepo.HasMember(ctx, groupID, userID)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify group membership.")
	}
	if !exists {
		return apperror.NotFound("The user does not belong to the group.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.RemoveMember(txCtx, groupID, userID); err != nil {
			return apperror.FromDBError(err, "Could not remove the user from the group.")
		}
		return s.logAudit(txCtx, actorID, model.ActionRemoveGroupMember, group.Name, map[string]interface{}{
			"group_id": groupID, "user_id": userID,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(userID)
	return nil
}

// --- Helpers ---

func (s *groupService) findGroup(ctx context.Context, id uint) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Group not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the group.")
	}
	return group, nil
}

func (s *groupService) ensureNameUnique(ctx context.Context, name string, excludeID uint) error {
	existing, err := s.groupRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperror.FromDBError(err, "Could not validate the group name.")
	}
	if existing.ID != excludeID {
		return apperror.Conflict("A group with that name already exists.")
	}
	return nil
}

// invalidateGroupMembers drops every member's cached permission set after a
// group-permission edit. Falls back to a full flush when the member list
// cannot be read, so stale entries never outlive the mutation.
func (s *groupService) invalidateGroupMembers(ctx context.Context, groupID uint) {
	ids, err := s.groupRepo.MemberIDs(ctx, groupID)
	if err != nil {
		s.cache.Flush()
		return
	}
	for _, id := range ids {
		s.cache.Invalidate(id)
	}
}

func (s *groupService) logAudit(ctx context.Context, actorID, action, entityName string, payload map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return apperror.FromDBError(err, "Could not write the audit log.")
	}
	return nil
}

func toGroupResponse(g model.Group, perms []model.Permission) GroupResponse {
	res := GroupResponse{ID: g.ID, Name: g.Name, Description: g.Description}
	if perms != nil {
		res.Permissions = make([]PermissionResponse, 0, len(perms))
		for _, p := range perms {
			res.Permissions = append(res.Permissions, toPermissionResponse(p))
		}
	}
	return res
}
