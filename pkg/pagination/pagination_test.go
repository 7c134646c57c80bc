package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	p := Parse(testContext(""))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseClamping(t *testing.T) {
	p := Parse(testContext("?page=0&limit=0"))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Parse(testContext("?page=3&limit=9999"))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 2*MaxLimit, p.Offset)
}

func TestBuildMeta(t *testing.T) {
	meta := Params{Page: 1, Limit: 50}.BuildMeta(101)
	assert.Equal(t, int64(101), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	meta = Params{Page: 1, Limit: 50}.BuildMeta(100)
	assert.Equal(t, 2, meta.TotalPages)

	meta = Params{Page: 1, Limit: 50}.BuildMeta(0)
	assert.Equal(t, 0, meta.TotalPages, "empty table has zero pages")

	meta = Params{Page: 7, Limit: 10}.BuildMeta(1)
	assert.Equal(t, 1, meta.TotalPages)
	assert.Equal(t, 7, meta.Page, "requested page is echoed even out of range")
}
