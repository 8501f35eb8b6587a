// Package pagination parses the page/limit query contract shared by every
// list endpoint and builds the paging metadata returned alongside results.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Params is one requested page, already clamped to sane bounds.
type Params struct {
	Page  int
	Limit int
}

// Offset is the row offset for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the page actually served, for list response envelopes.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Meta pairs these params with the total row count.
func (p Params) Meta(total int64) Meta {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// Parse reads ?page= and ?limit=, falling back to the defaults on missing or
// malformed values and capping limit so one request cannot dump a whole table.
func Parse(c *gin.Context) Params {
	return Params{
		Page:  intQuery(c, "page", defaultPage, 1, 0),
		Limit: intQuery(c, "limit", defaultLimit, 1, maxLimit),
	}
}

func intQuery(c *gin.Context, key string, fallback, min, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < min {
		return fallback
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
