package respond

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 response for a newly stored resource.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// PageParams reads limit and offset from the query string. On a bad value it
// writes a validation error and returns ok=false.
func PageParams(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageLimit, 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxPageLimit {
			Error(c, http.StatusBadRequest, "validation_error", "limit must be between 1 and 100", nil)
			return 0, 0, false
		}
		limit = parsed
	}
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			Error(c, http.StatusBadRequest, "validation_error", "offset must be a non-negative number", nil)
			return 0, 0, false
		}
		offset = parsed
	}
	return limit, offset, true
}

// Page writes a list response keyed by name along with the paging window.
func Page(c *gin.Context, name string, items any, limit, offset int) {
	OK(c, gin.H{name: items, "limit": limit, "offset": offset})
}
