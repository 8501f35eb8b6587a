package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/auth"
	"backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver serves a fixed slug set and counts how often it is consulted.
type stubResolver struct {
	slugs auth.SlugSet
	err   error
	calls int
}

func (s *stubResolver) ResolveEffective(context.Context, string) (auth.SlugSet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.slugs.Clone(), nil
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

func gateRouter(resolver *stubResolver, cache *auth.Cache, userID string, slugs ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	gate := NewPermissionGate(resolver, cache)

	r := gin.New()
	r.GET("/probe", asUser(userID), gate.Require(slugs...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func probe(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGateAllowsGrantedSlug(t *testing.T) {
	resolver := &stubResolver{slugs: auth.NewSlugSet("orders:view")}
	r := gateRouter(resolver, auth.NewCache(time.Minute), "user-1", "orders:view")

	w := probe(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateRejectsMissingSlug(t *testing.T) {
	resolver := &stubResolver{slugs: auth.NewSlugSet("orders:view")}
	r := gateRouter(resolver, auth.NewCache(time.Minute), "user-1", "orders:delete")

	w := probe(t, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
	// The body must not leak which slug was missing.
	assert.NotContains(t, w.Body.String(), "orders:delete")
}

func TestGateRejectsAnonymous(t *testing.T) {
	resolver := &stubResolver{slugs: auth.NewSlugSet("orders:view")}
	r := gateRouter(resolver, auth.NewCache(time.Minute), "", "orders:view")

	w := probe(t, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, resolver.calls)
}

func TestGateEmptyRequirementIsPassThrough(t *testing.T) {
	resolver := &stubResolver{}
	r := gateRouter(resolver, auth.NewCache(time.Minute), "")

	w := probe(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, resolver.calls)
}

func TestGateUsesCacheAcrossRequests(t *testing.T) {
	resolver := &stubResolver{slugs: auth.NewSlugSet("orders:view")}
	cache := auth.NewCache(time.Minute)
	r := gateRouter(resolver, cache, "user-1", "orders:view")

	for i := 0; i < 3; i++ {
		w := probe(t, r)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, resolver.calls, "second and third requests must hit the cache")

	cache.Invalidate("user-1")
	w := probe(t, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, resolver.calls)
}

func TestGateMemoizesWithinRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &stubResolver{slugs: auth.NewSlugSet("orders:view", "orders:edit")}
	gate := NewPermissionGate(resolver, auth.NewCache(time.Minute))

	r := gin.New()
	// Stacked gates on one route resolve at most once per request.
	r.GET("/probe", asUser("user-1"),
		gate.Require("orders:view"),
		gate.Require("orders:edit"),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := probe(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resolver.calls)
}

func TestGateNormalizesRequiredSlugs(t *testing.T) {
	resolver := &stubResolver{slugs: auth.NewSlugSet("orders:view")}
	r := gateRouter(resolver, auth.NewCache(time.Minute), "user-1", "  Orders:View ")

	w := probe(t, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateSurfacesResolverErrors(t *testing.T) {
	resolver := &stubResolver{err: apperror.Internal("boom")}
	r := gateRouter(resolver, auth.NewCache(time.Minute), "user-1", "orders:view")

	w := probe(t, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
