package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlugNormalizes(t *testing.T) {
	assert.Equal(t, Slug("orders:view"), NewSlug("  Orders:View  "))
	assert.True(t, NewSlug("   ").IsZero())
}

func TestBuildSlug(t *testing.T) {
	assert.Equal(t, Slug("orders:view"), BuildSlug("Orders", "View"))
	// Internal whitespace collapses to dashes.
	assert.Equal(t, Slug("materia-prima:view"), BuildSlug("  Materia   Prima ", "view"))
}

func TestSlugSetMissing(t *testing.T) {
	set := NewSlugSet(NewSlug("orders:view"), NewSlug("orders:edit"))

	assert.Empty(t, set.Missing([]Slug{"orders:view"}))
	assert.Equal(t, []Slug{"orders:delete"}, set.Missing([]Slug{"orders:view", "orders:delete"}))
}

func TestSlugSetCloneIsIndependent(t *testing.T) {
	set := NewSlugSet(NewSlug("orders:view"))
	clone := set.Clone()
	clone.Add(NewSlug("orders:delete"))

	assert.False(t, set.Has("orders:delete"))
	assert.True(t, clone.Has("orders:delete"))
}

func TestNormalizeSlugsDropsEmpties(t *testing.T) {
	out := NormalizeSlugs([]string{" Orders:View ", "", "   "})
	assert.Equal(t, []Slug{"orders:view"}, out)
}
