package util

import (
	"net/http"

	"thai-travel-portal/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response is merged into the top level of a success body.
type Response map[string]interface{}

// Success writes {"success": true, ...data} with status 200.
func Success(c *gin.Context, data Response) {
	SuccessStatus(c, http.StatusOK, data)
}

// SuccessStatus is Success with an explicit status code.
func SuccessStatus(c *gin.Context, status int, data Response) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error writes {"success": false, "error": msg}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"error":   msg,
	})
}

// Fail maps a classified error to its status and writes the error body.
func Fail(c *gin.Context, err error) {
	Error(c, apperr.Status(err), apperr.Message(err))
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
