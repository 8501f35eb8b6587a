package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

// GroupRepository manages groups, their permission links and their members.
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Group, error)
	FindByName(ctx context.Context, name string) (*model.Group, error)
	List(ctx context.Context, page, limit int, search string) ([]model.Group, int64, error)

	CountMembers(ctx context.Context, groupID uint) (int64, error)
	MemberIDs(ctx context.Context, groupID uint) ([]string, error)
	AddMember(ctx context.Context, member *model.UserGroup) error
	RemoveMember(ctx context.Context, groupID uint, userID string) error
	HasMember(ctx context.Context, groupID uint, userID string) (bool, error)

	ListPermissions(ctx context.Context, groupID uint) ([]model.Permission, error)
	AddPermission(ctx context.Context, link *model.GroupPermission) error
	RemovePermission(ctx context.Context, groupID, permissionID uint) error
	HasPermission(ctx context.Context, groupID, permissionID uint) (bool, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	return GetDB(ctx, r.db).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *model.Group) error {
	return GetDB(ctx, r.db).Save(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("group_id = ?", id).Delete(&model.GroupPermission{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Group{}).Error
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	var group model.Group
	if err := GetDB(ctx, r.db).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindByName(ctx context.Context, name string) (*model.Group, error) {
	var group model.Group
	if err := GetDB(ctx, r.db).First(&group, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, page, limit int, search string) ([]model.Group, int64, error) {
	var groups []model.Group
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Group{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&groups).Error; err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

func (r *groupRepository) CountMembers(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.UserGroup{}).
		Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *groupRepository) MemberIDs(ctx context.Context, groupID uint) ([]string, error) {
	var ids []string
	err := GetDB(ctx, r.db).Model(&model.UserGroup{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *groupRepository) AddMember(ctx context.Context, member *model.UserGroup) error {
	return GetDB(ctx, r.db).Create(member).Error
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID uint, userID string) error {
	return GetDB(ctx, r.db).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.UserGroup{}).Error
}

func (r *groupRepository) HasMember(ctx context.Context, groupID uint, userID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.UserGroup{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepository) ListPermissions(ctx context.Context, groupID uint) ([]model.Permission, error) {
	var perms []model.Permission
	err := GetDB(ctx, r.db).
		Joins("JOIN group_permissions gp ON gp.permission_id = permissions.id").
		Where("gp.group_id = ?", groupID).
		Order("permissions.module asc, permissions.action asc").
		Find(&perms).Error
	return perms, err
}

func (r *groupRepository) AddPermission(ctx context.Context, link *model.GroupPermission) error {
	return GetDB(ctx, r.db).Create(link).Error
}

func (r *groupRepository) RemovePermission(ctx context.Context, groupID, permissionID uint) error {
	return GetDB(ctx, r.db).
		Where("group_id = ? AND permission_id = ?", groupID, permissionID).
		Delete(&model.GroupPermission{}).Error
}

func (r *groupRepository) HasPermission(ctx context.Context, groupID, permissionID uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.GroupPermission{}).
		Where("group_id = ? AND permission_id = ?", groupID, permissionID).
		Count(&count).Error
	return count > 0, err
}
