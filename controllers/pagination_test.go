package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	page, size := parsePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)

	page, size = parsePagination("3", "25")
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)

	// Garbage and out-of-range values fall back to defaults.
	page, size = parsePagination("-1", "0")
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)

	_, size = parsePagination("1", "5000")
	assert.Equal(t, defaultPageSize, size)
}

func TestPageEnvelopeLinks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/api/v1/posts?search=fest&page=2&page_size=10", nil)

	env := pageEnvelope(ctx, 35, 2, 10, []int{})
	assert.EqualValues(t, 35, env.Count)
	if assert.NotNil(t, env.Next) {
		assert.Contains(t, *env.Next, "page=3")
		assert.Contains(t, *env.Next, "search=fest")
	}
	if assert.NotNil(t, env.Previous) {
		assert.Contains(t, *env.Previous, "page=1")
	}

	// First of a single page has neither link.
	env = pageEnvelope(ctx, 5, 1, 10, []int{})
	assert.Nil(t, env.Next)
	assert.Nil(t, env.Previous)
}
