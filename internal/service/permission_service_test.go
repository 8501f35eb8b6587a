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

func newPermissionService(db *gorm.DB, cache *auth.Cache) PermissionService {
	return NewPermissionService(
		repository.NewPermissionRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		cache,
	)
}

func createPermission(t *testing.T, db *gorm.DB, module, action string) model.Permission {
	t.Helper()
	perm := model.Permission{Module: module, Action: action, Slug: module + ":" + action}
	require.NoError(t, db.Create(&perm).Error)
	return perm
}

func createUser(t *testing.T, db *gorm.DB, username string) model.User {
	t.Helper()
	user := model.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestResolveEffectiveUnionsDirectAndGroup(t *testing.T) {
	db := newTestDB(t)
	cache := auth.NewCache(time.Minute)
	svc := newPermissionService(db, cache)
	ctx := context.Background()

	user := createUser(t, db, "clara")
	direct := createPermission(t, db, "orders", "view")
	shared := createPermission(t, db, "orders", "edit")
	inherited := createPermission(t, db, "events", "view")

	require.NoError(t, db.Create(&model.UserPermission{UserID: user.ID, PermissionID: direct.ID}).Error)
	// shared is granted both directly and through the group; it must appear once.
	require.NoError(t, db.Create(&model.UserPermission{UserID: user.ID, PermissionID: shared.ID}).Error)

	group := model.Group{Name: "Sales"}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&model.GroupPermission{GroupID: group.ID, PermissionID: shared.ID}).Error)
	require.NoError(t, db.Create(&model.GroupPermission{GroupID: group.ID, PermissionID: inherited.ID}).Error)
	require.NoError(t, db.Create(&model.UserGroup{UserID: user.ID, GroupID: group.ID}).Error)

	slugs, err := svc.ResolveEffective(ctx, user.ID.String())
	require.NoError(t, err)

	assert.Len(t, slugs, 3)
	assert.True(t, slugs.Has("orders:view"))
	assert.True(t, slugs.Has("orders:edit"))
	assert.True(t, slugs.Has("events:view"))
}

func TestResolveEffectiveNoGrants(t *testing.T) {
	db := newTestDB(t)
	svc := newPermissionService(db, auth.NewCache(time.Minute))

	user := createUser(t, db, "nobody")
	slugs, err := svc.ResolveEffective(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Empty(t, slugs)
}

func TestResolveEffectiveRequiresUser(t *testing.T) {
	db := newTestDB(t)
	svc := newPermissionService(db, auth.NewCache(time.Minute))

	_, err := svc.ResolveEffective(context.Background(), "")
	assert.Equal(t, 401, apperror.StatusOf(err))
}

func TestGrantToUserInvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	cache := auth.NewCache(time.Minute)
	svc := newPermissionService(db, cache)
	ctx := context.Background()

	user := createUser(t, db, "leo")
	perm := createPermission(t, db, "orders", "view")

	cache.Put(user.ID.String(), auth.NewSlugSet("stale:slug"))
	require.NoError(t, svc.GrantToUser(ctx, user.ID.String(), user.ID.String(), perm.ID))

	_, ok := cache.Get(user.ID.String())
	assert.False(t, ok, "grant must drop the user's cached set")

	// A second identical grant conflicts.
	err := svc.GrantToUser(ctx, user.ID.String(), user.ID.String(), perm.ID)
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestRevokeFromUserInvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	cache := auth.NewCache(time.Minute)
	svc := newPermissionService(db, cache)
	ctx := context.Background()

	user := createUser(t, db, "mia")
	perm := createPermission(t, db, "orders", "view")
	require.NoError(t, db.Create(&model.UserPermission{UserID: user.ID, PermissionID: perm.ID}).Error)

	cache.Put(user.ID.String(), auth.NewSlugSet("orders:view"))
	require.NoError(t, svc.RevokeFromUser(ctx, user.ID.String(), user.ID.String(), perm.ID))

	_, ok := cache.Get(user.ID.String())
	assert.False(t, ok)

	// Revoking again is a 404.
	err := svc.RevokeFromUser(ctx, user.ID.String(), user.ID.String(), perm.ID)
	assert.Equal(t, 404, apperror.StatusOf(err))
}

func TestCreatePermissionRejectsDuplicateSlug(t *testing.T) {
	db := newTestDB(t)
	svc := newPermissionService(db, auth.NewCache(time.Minute))
	ctx := context.Background()
	actor := uuid.NewString()

	_, err := svc.CreatePermission(ctx, actor, CreatePermissionRequest{Module: "orders", Action: "view"})
	require.NoError(t, err)

	_, err = svc.CreatePermission(ctx, actor, CreatePermissionRequest{Module: "Orders", Action: " View "})
	assert.Equal(t, 409, apperror.StatusOf(err))
}

func TestDeletePermissionGuardedByReferences(t *testing.T) {
	db := newTestDB(t)
	svc := newPermissionService(db, auth.NewCache(time.Minute))
	ctx := context.Background()
	actor := uuid.NewString()

	perm := createPermission(t, db, "orders", "view")
	group := model.Group{Name: "Sales"}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&model.GroupPermission{GroupID: group.ID, PermissionID: perm.ID}).Error)

	err := svc.DeletePermission(ctx, actor, perm.ID)
	assert.Equal(t, 409, apperror.StatusOf(err))

	// Unlink, then deletion succeeds.
	require.NoError(t, db.Delete(&model.GroupPermission{}, "group_id = ? AND permission_id = ?", group.ID, perm.ID).Error)
	require.NoError(t, svc.DeletePermission(ctx, actor, perm.ID))

	_, err = svc.GetPermission(ctx, perm.ID)
	assert.Equal(t, 404, apperror.StatusOf(err))
}

func TestUpdatePermissionFlushesCache(t *testing.T) {
	db := newTestDB(t)
	cache := auth.NewCache(time.Minute)
	svc := newPermissionService(db, cache)
	ctx := context.Background()

	perm := createPermission(t, db, "orders", "view")
	cache.Put("someone-else", auth.NewSlugSet("orders:view"))

	next := "inspect"
	_, err := svc.UpdatePermission(ctx, uuid.NewString(), perm.ID, UpdatePermissionRequest{Action: &next})
	require.NoError(t, err)

	_, ok := cache.Get("someone-else")
	assert.False(t, ok, "slug rename must flush every cached set")
}

func TestSeedDefaultPermissionsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newPermissionService(db, auth.NewCache(time.Minute))
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaultPermissions(ctx))
	require.NoError(t, svc.SeedDefaultPermissions(ctx))

	var count int64
	require.NoError(t, db.Model(&model.Permission{}).Count(&count).Error)
	assert.Equal(t, int64(len(auth.AllPermissionSlugs())), count)
}
