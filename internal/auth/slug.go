package auth

import "strings"

// Slug identifies one permission as a normalized "module:action" string.
// The zero value is empty and never matches anything.
type Slug string

// NewSlug normalizes raw input into a Slug. Comparison is always done on the
// lower-cased, trimmed form.
func NewSlug(raw string) Slug {
	return Slug(strings.ToLower(strings.TrimSpace(raw)))
}

func (s Slug) String() string { return string(s) }

func (s Slug) IsZero() bool { return s == "" }

// BuildSlug derives the canonical slug for a module/action pair. Internal
// whitespace collapses to single dashes so "materia prima" becomes
// "materia-prima".
func BuildSlug(module, action string) Slug {
	return Slug(slugSegment(module) + ":" + slugSegment(action))
}

func slugSegment(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), "-")
}

// SlugSet is a set of permission slugs.
type SlugSet map[Slug]struct{}

func NewSlugSet(slugs ...Slug) SlugSet {
	set := make(SlugSet, len(slugs))
	for _, s := range slugs {
		set.Add(s)
	}
	return set
}

// NormalizeSlugs lower-cases and filters the raw slug list, dropping empties.
func NormalizeSlugs(raw []string) []Slug {
	out := make([]Slug, 0, len(raw))
	for _, r := range raw {
		if s := NewSlug(r); !s.IsZero() {
			out = append(out, s)
		}
	}
	return out
}

func (set SlugSet) Add(s Slug) {
	if !s.IsZero() {
		set[s] = struct{}{}
	}
}

func (set SlugSet) Has(s Slug) bool {
	_, ok := set[s]
	return ok
}

// Missing returns the required slugs not present in the set, preserving order.
func (set SlugSet) Missing(required []Slug) []Slug {
	var missing []Slug
	for _, s := range required {
		if !set.Has(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// Clone returns an independent copy so callers cannot mutate shared state.
func (set SlugSet) Clone() SlugSet {
	out := make(SlugSet, len(set))
	for s := range set {
		out[s] = struct{}{}
	}
	return out
}

// Slice returns the members as strings, for JSON responses.
func (set SlugSet) Slice() []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s.String())
	}
	return out
}
