package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder records finished HTTP requests.
type RequestRecorder interface {
	RecordRequest(method, route string, statusCode int, duration time.Duration)
}

// Metrics returns a Gin middleware that records every request by its route
// template, so ids in paths do not create new series.
func Metrics(rec RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
