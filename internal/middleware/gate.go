package middleware

import (
	"context"
	"net/http"

	"backend/internal/auth"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// contextPermissions memoizes the resolved set per request so stacked gates
// on one route resolve at most once.
const contextPermissions = "userPermissions"

// PermissionResolver computes the effective permission set for a user.
type PermissionResolver interface {
	ResolveEffective(ctx context.Context, userID string) (auth.SlugSet, error)
}

// PermissionGate guards routes behind required permission slugs. It is
// constructed explicitly with its cache and resolver rather than reaching
// for package globals, so tests can inject both.
type PermissionGate struct {
	resolver PermissionResolver
	cache    *auth.Cache
}

func NewPermissionGate(resolver PermissionResolver, cache *auth.Cache) *PermissionGate {
	return &PermissionGate{resolver: resolver, cache: cache}
}

// Require returns a middleware that rejects requests whose principal lacks
// any of the given slugs. With no slugs it is a pass-through, used for routes
// that need authentication but no fine-grained permission.
func (g *PermissionGate) Require(requiredSlugs ...string) gin.HandlerFunc {
	// Normalized once at construction time.
	required := auth.NormalizeSlugs(requiredSlugs)
	if len(required) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		granted, err := g.loadPermissions(c)
		if err != nil {
			status, res := response.FromError(err)
			c.AbortWithStatusJSON(status, res)
			return
		}

		// Never reveals which slug was missing.
		if missing := granted.Missing(required); len(missing) > 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Next()
	}
}

func (g *PermissionGate) loadPermissions(c *gin.Context) (auth.SlugSet, error) {
	if cached, ok := c.Get(contextPermissions); ok {
		if slugs, ok := cached.(auth.SlugSet); ok {
			return slugs, nil
		}
	}

	userID := CurrentUserID(c)
	if userID == "" {
		return nil, apperror.Unauthorized("Could not identify the user.")
	}

	if slugs, ok := g.cache.Get(userID); ok {
		c.Set(contextPermissions, slugs)
		return slugs, nil
	}

	slugs, err := g.resolver.ResolveEffective(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}

	g.cache.Put(userID, slugs)
	c.Set(contextPermissions, slugs)
	return slugs, nil
}
