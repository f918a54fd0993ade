package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int64
		wantPageSize int64
	}{
		{"defaults", "", 1, 20},
		{"explicit values", "page=3&pageSize=50", 3, 50},
		{"page below minimum", "page=0&pageSize=10", 1, 10},
		{"pageSize below minimum", "page=2&pageSize=-5", 2, 20},
		{"pageSize above maximum", "pageSize=500", 1, 100},
		{"non-numeric falls back", "page=abc&pageSize=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := ParsePagination(testContext(t, tt.query))
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPageSize, page.PageSize)
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	page := PageRequest{Page: 3, PageSize: 25}
	assert.Equal(t, int64(50), page.GetOffset())
	assert.Equal(t, int64(25), page.GetLimit())
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantField string
		wantOrder SortOrder
	}{
		{"defaults to given field descending", "", "date", SortDesc},
		{"explicit field and order", "sortBy=totalAmount&order=asc", "totalAmount", SortAsc},
		{"invalid order falls back to desc", "sortBy=createdAt&order=sideways", "createdAt", SortDesc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sort := ParseSort(testContext(t, tt.query), "date")
			assert.Equal(t, tt.wantField, sort.Field)
			assert.Equal(t, tt.wantOrder, sort.Order)
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]string{"a", "b"}, 2, 2, 5)

	assert.Equal(t, int64(5), resp.TotalItems)
	assert.Equal(t, int64(3), resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.True(t, resp.HasPrev)
}

func TestNewPageResponseEmpty(t *testing.T) {
	resp := NewPageResponse([]string{}, 1, 20, 0)

	assert.Equal(t, int64(1), resp.TotalPages)
	assert.False(t, resp.HasNext)
	assert.False(t, resp.HasPrev)
}
