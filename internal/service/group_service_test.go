package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGroupService(db *gorm.DB, cache *auth.Cache) GroupService {
	return NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewPermissionRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		cache,
	)
}

func TestCreateGroupRejectsDuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := newGroupService(db, auth.NewCache(time.Minute))
	ctx := context.Background()
	actor := uuid.NewString()

	_, err := svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: "Sales"})
	require.NoError(t, err)

	_, err = svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: " Sales "})
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestDeleteGroupGuardedByMembers(t *testing.T) {
	db := newTestDB(t)
	svc := newGroupService(db, auth.NewCache(time.Minute))
	ctx := context.Background()
	actor := uuid.NewString()

	group, err := svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: "Sales"})
	require.NoError(t, err)

	user := createUser(t, db, "dora")
	require.NoError(t, svc.AddMember(ctx, actor, group.ID, user.ID.String()))

	err = svc.DeleteGroup(ctx, actor, group.ID)
	assert.Equal(t, 409, apperror.StatusOf(err))

	require.NoError(t, svc.RemoveMember(ctx, actor, group.ID, user.ID.String()))
	require.NoError(t, svc.DeleteGroup(ctx, actor, group.ID))
}

func TestMembershipChangesInvalidateMemberCache(t *testing.T) {
	db := newTestDB(t)
	cache := auth.NewCache(time.Minute)
	svc := newGroupService(db, cache)
	ctx := context.Background()
	actor := uuid.NewString()

	group, err := svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: "Sales"})
	require.NoError(t, err)
	user := createUser(t, db, "pablo")

	cache.Put(user.ID.String(), auth.NewSlugSet("stale:slug"))
	require.NoError(t, svc.AddMember(ctx, actor, group.ID, user.ID.String()))
	_, ok := cache.Get(user.ID.String())
	assert.False(t, ok, "joining a group must drop the member's cached set")

	cache.Put(user.ID.String(), auth.NewSlugSet("stale:slug"))
	require.NoError(t, svc.RemoveMember(ctx, actor, group.ID, user.ID.String()))
	_, ok = cache.Get(user.ID.String())
	assert.False(t, ok, "leaving a group must drop the member's cached set")
}

func TestGroupPermissionChangesInvalidateAllMembers(t *testing.T) {
	db := newTestDB(t)
	cache := auth.NewCache(time.Minute)
	svc := newGroupService(db, cache)
	ctx := context.Background()
	actor := uuid.NewString()

	group, err := svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: "Sales"})
	require.NoError(t, err)
	perm := createPermission(t, db, "orders", "view")

	member := createUser(t, db, "rita")
	outsider := createUser(t, db, "omar")
	require.NoError(t, svc.AddMember(ctx, actor, group.ID, member.ID.String()))

	cache.Put(member.ID.String(), auth.NewSlugSet("stale:slug"))
	cache.Put(outsider.ID.String(), auth.NewSlugSet("other:slug"))

	require.NoError(t, svc.AddGroupPermission(ctx, actor, group.ID, perm.ID))

	_, ok := cache.Get(member.ID.String())
	assert.False(t, ok, "member's cached set must be dropped")
	_, ok = cache.Get(outsider.ID.String())
	assert.True(t, ok, "non-members keep their cached sets")

	// Linking the same permission twice conflicts.
	err = svc.AddGroupPermission(ctx, actor, group.ID, perm.ID)
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestGroupPermissionListAndRemove(t *testing.T) {
	db := newTestDB(t)
	svc := newGroupService(db, auth.NewCache(time.Minute))
	ctx := context.Background()
	actor := uuid.NewString()

	group, err := svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: "Sales"})
	require.NoError(t, err)
	perm := createPermission(t, db, "orders", "view")

	require.NoError(t, svc.AddGroupPermission(ctx, actor, group.ID, perm.ID))

	perms, err := svc.ListGroupPermissions(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "orders:view", perms[0].Slug)

	require.NoError(t, svc.RemoveGroupPermission(ctx, actor, group.ID, perm.ID))
	err = svc.RemoveGroupPermission(ctx, actor, group.ID, perm.ID)
	assert.Equal(t, 404, apperror.StatusOf(err))
}

func TestDeleteGroupClearsPermissionLinks(t *testing.T) {
	db := newTestDB(t)
	svc := newGroupService(db, auth.NewCache(time.Minute))
	ctx := context.Background()
	actor := uuid.NewString()

	group, err := svc.CreateGroup(ctx, actor, CreateGroupRequest{Name: "Sales"})
	require.NoError(t, err)
	perm := createPermission(t, db, "orders", "view")
	require.NoError(t, svc.AddGroupPermission(ctx, actor, group.ID, perm.ID))

	require.NoError(t, svc.DeleteGroup(ctx, actor, group.ID))

	var count int64
	require.NoError(t, db.Model(&model.GroupPermission{}).Where("group_id = ?", group.ID).Count(&count).Error)
	assert.Zero(t, count)
}
