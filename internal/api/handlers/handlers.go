// Package handlers provides the shared pieces of the API endpoint handlers:
// the OpenAI error object types, the base handler carrying the server's
// dependencies, and helpers to emit errors in OpenAI-compatible shape.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ccshim/claude-code-api/internal/claude"
	"github.com/ccshim/claude-code-api/internal/config"
	"github.com/ccshim/claude-code-api/internal/registry"
)

// ErrorResponse is the OpenAI-compatible error envelope.
type ErrorResponse struct {
	// Error contains detailed information about the error that occurred.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one API error.
type ErrorDetail struct {
	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Type is the error category (e.g. "invalid_request_error").
	Type string `json:"type"`

	// Param names the offending request parameter, if known.
	Param string `json:"param,omitempty"`

	// Code is a short machine-readable error code, if applicable.
	Code string `json:"code,omitempty"`
}

// Error type constants used on the wire.
const (
	TypeAuthenticationError = "authentication_error"
	TypeInvalidRequestError = "invalid_request_error"
	TypeUpstreamError       = "upstream_error"
)

// BaseAPIHandler carries the immutable dependencies every endpoint handler
// needs. There is no mutable state: each request is handled independently.
type BaseAPIHandler struct {
	// Cfg is the application configuration, fixed at process start.
	Cfg *config.Config

	// Registry is the static model alias table.
	Registry *registry.Registry

	// Invoker runs the Claude Code CLI.
	Invoker *claude.Invoker
}

// NewBaseAPIHandler creates the shared handler base.
func NewBaseAPIHandler(cfg *config.Config, reg *registry.Registry, invoker *claude.Invoker) *BaseAPIHandler {
	return &BaseAPIHandler{
		Cfg:      cfg,
		Registry: reg,
		Invoker:  invoker,
	}
}

// AbortWithError writes an OpenAI-shaped error body and stops the handler
// chain.
func AbortWithError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	})
}
