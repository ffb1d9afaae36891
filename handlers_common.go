package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// pagination is parsed from ?page=&limit=&search= on list endpoints.
type pagination struct {
	Page   int
	Limit  int
	Search string
}

func (p pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePagination(c *gin.Context) pagination {
	p := pagination{Page: 1, Limit: defaultPageSize, Search: c.Query("search")}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
		if p.Limit > maxPageSize {
			p.Limit = maxPageSize
		}
	}
	return p
}

func respondList(c *gin.Context, items any, total int64, p pagination) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	})
}

// respondServerError logs detail server-side and returns the generic 500
// shape. Nothing from err reaches the client.
func respondServerError(c *gin.Context, err error, what string) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(what)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// idParam parses the :id path segment; a non-numeric id is treated as not
// found rather than a validation error.
func idParam(c *gin.Context) (uint, bool) {
	id, err := atoiID(c.Param("id"))
	if err != nil {
		respondNotFound(c)
		return 0, false
	}
	return id, true
}
