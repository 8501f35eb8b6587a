package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaultsAndClamping(t *testing.T) {
	cases := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&limit=25", 3, 25},
		{"zero page falls back", "page=0", 1, 10},
		{"negative limit falls back", "limit=-5", 1, 10},
		{"limit capped", "limit=5000", 1, 100},
		{"garbage falls back", "page=abc&limit=xyz", 1, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := parseQuery(t, tc.query)
			assert.Equal(t, tc.page, params.Page)
			assert.Equal(t, tc.limit, params.Limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Params{Page: 5, Limit: 10}.Offset())
}

func TestMetaRoundsPagesUp(t *testing.T) {
	meta := Params{Page: 2, Limit: 10}.Meta(21)
	assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, meta)

	meta = Params{Page: 1, Limit: 10}.Meta(0)
	assert.Equal(t, int64(0), meta.TotalPages)
}
