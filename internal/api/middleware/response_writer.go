package middleware

import (
	"bytes"

	"github.com/gin-gonic/gin"
)

// responseWriter wraps gin's ResponseWriter and mirrors everything written
// to the client into a buffer so the logging middleware can record it.
type responseWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func newResponseWriter(w gin.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

// Write captures the payload and forwards it to the client.
func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

// WriteString captures the payload and forwards it to the client.
func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Body returns everything written so far.
func (w *responseWriter) Body() []byte {
	return w.body.Bytes()
}
