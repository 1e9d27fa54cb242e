package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageEnvelope is the wire shape of every list endpoint.
type PageEnvelope struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := defaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= maxPageSize {
		pageSize = s
	}
	return page, pageSize
}

// pageEnvelope wraps results with count and next/previous page links built
// from the request URL.
func pageEnvelope(ctx *gin.Context, count int64, page, pageSize int, results interface{}) PageEnvelope {
	env := PageEnvelope{Count: count, Results: results}
	totalPages := int((count + int64(pageSize) - 1) / int64(pageSize))
	if page < totalPages {
		env.Next = pageLink(ctx, page+1, pageSize)
	}
	if page > 1 {
		env.Previous = pageLink(ctx, page-1, pageSize)
	}
	return env
}

func pageLink(ctx *gin.Context, page, pageSize int) *string {
	q := ctx.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	link := fmt.Sprintf("%s?%s", ctx.Request.URL.Path, q.Encode())
	return &link
}
