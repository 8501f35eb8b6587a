package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// PermissionRepository covers permission definitions, direct user grants, and
// the queries the resolver needs to compute an effective permission set.
type PermissionRepository interface {
	Create(ctx context.Context, perm *model.Permission) error
	Update(ctx context.Context, perm *model.Permission) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Permission, error)
	FindBySlug(ctx context.Context, slug string) (*model.Permission, error)
	List(ctx context.Context, page, limit int, search string) ([]model.Permission, int64, error)

	// Reference counts guard deletion of permissions still in use.
	CountGroupLinks(ctx context.Context, permissionID uint) (int64, error)
	CountUserGrants(ctx context.Context, permissionID uint) (int64, error)

	// Resolver queries.
	DirectPermissionIDs(ctx context.Context, userID string) ([]uint, error)
	GroupIDsForUser(ctx context.Context, userID string) ([]uint, error)
	PermissionIDsForGroups(ctx context.Context, groupIDs []uint) ([]uint, error)
	SlugsByIDs(ctx context.Context, ids []uint) ([]string, error)

	// Direct grants.
	ListDirectGrants(ctx context.Context, userID string) ([]model.Permission, error)
	Grant(ctx context.Context, grant *model.UserPermission) error
	Revoke(ctx context.Context, userID string, permissionID uint) error
	HasGrant(ctx context.Context, userID string, permissionID uint) (bool, error)
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Create(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *permissionRepository) Update(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Save(perm).Error
}

func (r *permissionRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Permission{}).Error
}

func (r *permissionRepository) FindByID(ctx context.Context, id uint) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).First(&perm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) FindBySlug(ctx context.Context, slug string) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).First(&perm, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) List(ctx context.Context, page, limit int, search string) ([]model.Permission, int64, error) {
	var perms []model.Permission
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Permission{})
	if search != "" {
		pattern := "%" + search + "%"
		db = db.Where("module LIKE ? OR action LIKE ? OR slug LIKE ?", pattern, pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("module asc, action asc").Offset(offset).Limit(limit).Find(&perms).Error; err != nil {
		return nil, 0, err
	}

	return perms, total, nil
}

func (r *permissionRepository) CountGroupLinks(ctx context.Context, permissionID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.GroupPermission{}).
		Where("permission_id = ?", permissionID).Count(&count).Error
	return count, err
}

func (r *permissionRepository) CountUserGrants(ctx context.Context, permissionID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.UserPermission{}).
		Where("permission_id = ?", permissionID).Count(&count).Error
	return count, err
}

func (r *permissionRepository) DirectPermissionIDs(ctx context.Context, userID string) ([]uint, error) {
	var ids []uint
	err := GetDB(ctx, r.db).Model(&model.UserPermission{}).
		Where("user_id = ?", userID).
		Pluck("permission_id", &ids).Error
	return ids, err
}

func (r *permissionRepository) GroupIDsForUser(ctx context.Context, userID string) ([]uint, error) {
	var ids []uint
	err := GetDB(ctx, r.db).Model(&model.UserGroup{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *permissionRepository) PermissionIDsForGroups(ctx context.Context, groupIDs []uint) ([]uint, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := GetDB(ctx, r.db).Model(&model.GroupPermission{}).
		Where("group_id IN ?", groupIDs).
		Pluck("permission_id", &ids).Error
	return ids, err
}

func (r *permissionRepository) SlugsByIDs(ctx context.Context, ids []uint) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var slugs []string
	err := GetDB(ctx, r.db).Model(&model.Permission{}).
		Where("id IN ?", ids).
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *permissionRepository) ListDirectGrants(ctx context.Context, userID string) ([]model.Permission, error) {
	var perms []model.Permission
	err := GetDB(ctx, r.db).
		Joins("JOIN user_permissions up ON up.permission_id = permissions.id").
		Where("up.user_id = ?", userID).
		Order("permissions.module asc, permissions.action asc").
		Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) Grant(ctx context.Context, grant *model.UserPermission) error {
	return GetDB(ctx, r.db).Create(grant).Error
}

func (r *permissionRepository) Revoke(ctx context.Context, userID string, permissionID uint) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&model.UserPermission{}).Error
}

func (r *permissionRepository) HasGrant(ctx context.Context, userID string, permissionID uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&count).Error
	return count > 0, err
}
