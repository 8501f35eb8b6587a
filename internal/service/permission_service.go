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

type CreatePermissionRequest struct {
	Module string `json:"module" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type UpdatePermissionRequest struct {
	Module *string `json:"module"`
	Action *string `json:"action"`
}

type PermissionResponse struct {
	ID     uint   `json:"id"`
	Module string `json:"module"`
	Action string `json:"action"`
	Slug   string `json:"slug"`
}

type PermissionFilter struct {
	Page   int
	Limit  int
	Search string
}

// --- Interface ---

// PermissionService owns permission definitions, direct grants, and the
// resolver the authorization gate consults.
type PermissionService interface {
	ResolveEffective(ctx context.Context, userID string) (auth.SlugSet, error)

	ListPermissions(ctx context.Context, filter PermissionFilter) ([]PermissionResponse, int64, error)
	GetPermission(ctx context.Context, id uint) (*PermissionResponse, error)
	CreatePermission(ctx context.Context, actorID string, req CreatePermissionRequest) (*PermissionResponse, error)
	UpdatePermission(ctx context.Context, actorID string, id uint, req UpdatePermissionRequest) (*PermissionResponse, error)
	DeletePermission(ctx context.Context, actorID string, id uint) error

	ListUserGrants(ctx context.Context, userID string) ([]PermissionResponse, error)
	GrantToUser(ctx context.Context, actorID, userID string, permissionID uint) error
	RevokeFromUser(ctx context.Context, actorID, userID string, permissionID uint) error

	SeedDefaultPermissions(ctx context.Context) error
}

type permissionService struct {
	permRepo  repository.PermissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	cache     *auth.Cache
}

func NewPermissionService(
	permRepo repository.PermissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	cache *auth.Cache,
) PermissionService {
	return &permissionService{
		permRepo:  permRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		cache:     cache,
	}
}

// --- Resolver ---

// ResolveEffective unions direct grants with group-inherited grants and
// returns the normalized slug set. Pure read; the gate handles caching.
func (s *permissionService) ResolveEffective(ctx context.Context, userID string) (auth.SlugSet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("Could not identify the user.")
	}

	directIDs, err := s.permRepo.DirectPermissionIDs(ctx, userID)
	if err != nil {
		return nil, apperror.FromDBError(err, "Could not fetch the user's direct permissions.")
	}

	groupIDs, err := s.permRepo.GroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDBError(err, "Could not fetch the user's groups.")
	}

	idSet := make(map[uint]struct{}, len(directIDs))
	for _, id := range directIDs {
		idSet[id] = struct{}{}
	}

	if len(groupIDs) > 0 {
		groupPermIDs, err := s.permRepo.PermissionIDsForGroups(ctx, groupIDs)
		if err != nil {
			return nil, apperror.FromDBError(err, "Could not fetch the groups' permissions.")
		}
		for _, id := range groupPermIDs {
			idSet[id] = struct{}{}
		}
	}

	slugs := auth.NewSlugSet()
	if len(idSet) == 0 {
		return slugs, nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	rawSlugs, err := s.permRepo.SlugsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.FromDBError(err, "Could not fetch the permission slugs.")
	}
	for _, raw := range rawSlugs {
		slugs.Add(auth.NewSlug(raw))
	}

	return slugs, nil
}

// --- Permission admin ---

func (s *permissionService) ListPermissions(ctx context.Context, filter PermissionFilter) ([]PermissionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	perms, total, err := s.permRepo.List(ctx, filter.Page, filter.Limit, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list permissions.")
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, total, nil
}

func (s *permissionService) GetPermission(ctx context.Context, id uint) (*PermissionResponse, error) {
	perm, err := s.permRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Permission not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the permission.")
	}
	res := toPermissionResponse(*perm)
	return &res, nil
}

func (s *permissionService) CreatePermission(ctx context.Context, actorID string, req CreatePermissionRequest) (*PermissionResponse, error) {
	module := strings.TrimSpace(req.Module)
	action := strings.TrimSpace(req.Action)
	if module == "" || action == "" {
		return nil, apperror.BadRequest("Module and action are required.")
	}

	slug := auth.BuildSlug(module, action)
	if err := s.ensureSlugUnique(ctx, slug.String(), 0); err != nil {
		return nil, err
	}

	perm := model.Permission{Module: module, Action: action, Slug: slug.String()}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.permRepo.Create(txCtx, &perm); err != nil {
			return apperror.FromDBError(err, "Could not create the permission.")
		}
		return s.logAudit(txCtx, actorID, model.ActionCreatePermission, perm.Slug, map[string]interface{}{
			"id": perm.ID, "module": module, "action": action,
		})
	})
	if err != nil {
		return nil, err
	}

	res := toPermissionResponse(perm)
	return &res, nil
}

func (s *permissionService) UpdatePermission(ctx context.Context, actorID string, id uint, req UpdatePermissionRequest) (*PermissionResponse, error) {
	if req.Module == nil && req.Action == nil {
		return nil, apperror.BadRequest("No data provided to update.")
	}

	perm, err := s.permRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Permission not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the permission.")
	}

	if req.Module != nil {
		module := strings.TrimSpace(*req.Module)
		if module == "" {
			return nil, apperror.BadRequest("Module cannot be empty.")
		}
		perm.Module = module
	}
	if req.Action != nil {
		action := strings.TrimSpace(*req.Action)
		if action == "" {
			return nil, apperror.BadRequest("Action cannot be empty.")
		}
		perm.Action = action
	}

	nextSlug := auth.BuildSlug(perm.Module, perm.Action).String()
	if nextSlug != perm.Slug {
		if err := s.ensureSlugUnique(ctx, nextSlug, id); err != nil {
			return nil, err
		}
		perm.Slug = nextSlug
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.permRepo.Update(txCtx, perm); err != nil {
			return apperror.FromDBError(err, "Could not update the permission.")
		}
		return s.logAudit(txCtx, actorID, model.ActionUpdatePermission, perm.Slug, map[string]interface{}{
			"id": perm.ID, "module": perm.Module, "action": perm.Action,
		})
	})
	if err != nil {
		return nil, err
	}

	// A slug rename changes what cached sets mean; drop everything.
	s.cache.Flush()

	res := toPermissionResponse(*perm)
	return &res, nil
}

func (s *permissionService) DeletePermission(ctx context.Context, actorID string, id uint) error {
	perm, err := s.permRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Permission not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the permission.")
	}

	groupLinks, err := s.permRepo.CountGroupLinks(ctx, id)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify permission usage in groups.")
	}
	if groupLinks > 0 {
		return apperror.Conflict("Cannot delete: the permission belongs to one or more groups.")
	}

	userGrants, err := s.permRepo.CountUserGrants(ctx, id)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify permission usage by users.")
	}
	if userGrants > 0 {
		return apperror.Conflict("Cannot delete: the permission is assigned to users.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.permRepo.Delete(txCtx, id); err != nil {
			return apperror.FromDBError(err, "Could not delete the permission.")
		}
		return s.logAudit(txCtx, actorID, model.ActionDeletePermission, perm.Slug, map[string]interface{}{"id": id})
	})
	if err != nil {
		return err
	}

	s.cache.Flush()
	return nil
}

// --- Direct grants ---

func (s *permissionService) ListUserGrants(ctx context.Context, userID string) ([]PermissionResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperror.BadRequest("Invalid user id.")
	}

	perms, err := s.permRepo.ListDirectGrants(ctx, userID)
	if err != nil {
		return nil, apperror.FromDBError(err, "Could not list the user's permissions.")
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *permissionService) GrantToUser(ctx context.Context, actorID, userID string, permissionID uint) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperror.BadRequest("Invalid user id.")
	}

	perm, err := s.permRepo.FindByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Permission not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the permission.")
	}

	exists, err := s.permRepo.HasGrant(ctx, userID, permissionID)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify the grant.")
	}
	if exists {
		return apperror.Conflict("The user already has that permission.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		grant := model.UserPermission{UserID: uid, PermissionID: permissionID}
		if err := s.permRepo.Grant(txCtx, &grant); err != nil {
			return apperror.FromDBError(err, "Could not grant the permission.")
		}
		return s.logAudit(txCtx, actorID, model.ActionGrantPermission, perm.Slug, map[string]interface{}{
			"user_id": userID, "permission_id": permissionID,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(userID)
	return nil
}

func (s *permissionService) RevokeFromUser(ctx context.Context, actorID, userID string, permissionID uint) error {
	if _, err := uuid.Parse(userID); err != nil {
		return apperror.BadRequest("Invalid user id.")
	}

	perm, err := s.permRepo.FindByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Permission not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the permission.")
	}

	exists, err := s.permRepo.HasGrant(ctx, userID, permissionID)
	if err != nil {
		return apperror.FromDBError(err, "Could not verify the grant.")
	}
	if !exists {
		return apperror.NotFound("The user does not have that permission.")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.permRepo.Revoke(txCtx, userID, permissionID); err != nil {
			return apperror.FromDBError(err, "Could not revoke the permission.")
		}
		return s.logAudit(txCtx, actorID, model.ActionRevokePermission, perm.Slug, map[string]interface{}{
			"user_id": userID, "permission_id": permissionID,
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(userID)
	return nil
}

// SeedDefaultPermissions upserts the well-known permission catalog so fresh
// databases start with every module:action pair defined.
func (s *permissionService) SeedDefaultPermissions(ctx context.Context) error {
	for _, raw := range auth.AllPermissionSlugs() {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) != 2 {
			continue
		}

		if _, err := s.permRepo.FindBySlug(ctx, raw); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.FromDBError(err, "Could not verify seeded permission.")
		}

		perm := model.Permission{Module: parts[0], Action: parts[1], Slug: raw}
		if err := s.permRepo.Create(ctx, &perm); err != nil {
			return apperror.FromDBError(err, "Could not seed permission "+raw+".")
		}
	}
	return nil
}

// --- Helpers ---

func (s *permissionService) ensureSlugUnique(ctx context.Context, slug string, excludeID uint) error {
	existing, err := s.permRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperror.FromDBError(err, "Could not validate the permission slug.")
	}
	if existing.ID != excludeID {
		return apperror.Conflict("A permission with that slug already exists.")
	}
	return nil
}

func (s *permissionService) logAudit(ctx context.Context, actorID, action, entityName string, payload map[string]interface{}) error {
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

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{ID: p.ID, Module: p.Module, Action: p.Action, Slug: p.Slug}
}
