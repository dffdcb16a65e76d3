// Package middleware provides the HTTP middleware for the API server. This
// file contains the request logging middleware: every request gets a summary
// line, and when detailed logging is enabled the request and response bodies
// are recorded at debug level too.
package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogging returns a middleware that logs one line per request with
// method, path, status and latency. When detailed is true it also captures
// the request and response bodies and logs them at debug level.
func RequestLogging(detailed bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var requestBody []byte
		if detailed && c.Request.Body != nil {
			data, err := io.ReadAll(c.Request.Body)
			if err == nil {
				requestBody = data
				c.Request.Body = io.NopCloser(bytes.NewReader(data))
			}
		}

		var wrapper *responseWriter
		if detailed {
			wrapper = newResponseWriter(c.Writer)
			c.Writer = wrapper
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": latency.String(),
		})

		if status >= 500 {
			entry.Error("request failed")
		} else {
			entry.Info("request handled")
		}

		if detailed {
			log.Debugf("request body: %s", requestBody)
			log.Debugf("response body: %s", wrapper.Body())
		}
	}
}
