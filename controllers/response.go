package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// respondError emits the standard error envelope:
// {"error": {code, message, details, timestamp, request_id}}
func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	requestID, _ := c.Get("request_id")
	body := gin.H{
		"code":       code,
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{"error": body})
}

// pageParams reads ?page and ?page_size, leaving clamping to the services.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(c *gin.Context, key string) *time.Time {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil
	}
	return &parsed
}
