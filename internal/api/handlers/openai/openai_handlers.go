// Package openai provides the HTTP handlers for the OpenAI-compatible
// endpoints: model listing and chat completions. Each completion request is
// translated into one Claude Code CLI invocation and the CLI's output is
// reshaped into an OpenAI chat.completion body.
package openai

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ccshim/claude-code-api/internal/api/handlers"
	"github.com/ccshim/claude-code-api/internal/claude"
	"github.com/ccshim/claude-code-api/internal/tokencount"
	translator "github.com/ccshim/claude-code-api/internal/translator/openai"
)

// OpenAIAPIHandler contains the handlers for the OpenAI-compatible endpoints.
type OpenAIAPIHandler struct {
	*handlers.BaseAPIHandler
}

// NewOpenAIAPIHandler creates a new OpenAI API handlers instance.
func NewOpenAIAPIHandler(base *handlers.BaseAPIHandler) *OpenAIAPIHandler {
	return &OpenAIAPIHandler{BaseAPIHandler: base}
}

// OpenAIModels handles the /v1/models endpoint. It returns the static list
// of supported model names and aliases.
func (h *OpenAIAPIHandler) OpenAIModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   h.Registry.Models(),
	})
}

// ChatCompletions handles the /v1/chat/completions endpoint. The request is
// validated, translated into a CLI invocation, executed synchronously, and
// the output is returned as a single-choice chat.completion object.
func (h *OpenAIAPIHandler) ChatCompletions(c *gin.Context) {
	rawJSON, err := c.GetRawData()
	if err != nil {
		handlers.AbortWithError(c, http.StatusBadRequest, handlers.TypeInvalidRequestError, "failed to read request body: "+err.Error())
		return
	}

	req, err := translator.ParseRequest(rawJSON)
	if err != nil {
		abortTranslationError(c, err)
		return
	}

	model, ok := h.Registry.Resolve(req.Model)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, handlers.ErrorResponse{
			Error: handlers.ErrorDetail{
				Message: "model '" + req.Model + "' not found",
				Type:    handlers.TypeInvalidRequestError,
				Param:   "model",
				Code:    "model_not_found",
			},
		})
		return
	}

	call, err := translator.ToInvocation(req, model, translator.InvocationOptions{
		AllowedTools:      h.Cfg.AllowedTools,
		PermissionMode:    h.Cfg.PermissionMode,
		MaxThinkingTokens: h.Cfg.MaxThinkingTokens,
	})
	if err != nil {
		abortTranslationError(c, err)
		return
	}

	log.Infof("chat completion: model=%s (resolved %s) messages=%d", req.Model, model, len(req.Messages))

	result, err := h.Invoker.Run(c.Request.Context(), call)
	if err != nil {
		log.Errorf("claude invocation failed: %v", err)
		handlers.AbortWithError(c, http.StatusBadGateway, handlers.TypeUpstreamError, err.Error())
		return
	}

	content := result.Text
	if req.WantsJSON() {
		content = translator.RepairJSON(content)
	}

	usage := exactOrEstimatedUsage(result, call)
	body := translator.BuildResponse(req.Model, content, usage)

	log.Infof("chat completion done: model=%s prompt_tokens=%d completion_tokens=%d", req.Model, usage.PromptTokens, usage.CompletionTokens)
	c.Data(http.StatusOK, "application/json", body)
}

// exactOrEstimatedUsage prefers the CLI-reported token counts and falls back
// to a tiktoken approximation of the prompt and output text.
func exactOrEstimatedUsage(result *claude.Result, call claude.Invocation) translator.Usage {
	if result.HasUsage {
		return translator.Usage{
			PromptTokens:     result.InputTokens,
			CompletionTokens: result.OutputTokens,
		}
	}
	return translator.Usage{
		PromptTokens:     tokencount.CountAll(call.SystemPrompt, call.Prompt),
		CompletionTokens: tokencount.Count(result.Text),
	}
}

// abortTranslationError maps translator errors onto the wire format.
func abortTranslationError(c *gin.Context, err error) {
	var verr *translator.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, handlers.ErrorResponse{
			Error: handlers.ErrorDetail{
				Message: verr.Message,
				Type:    handlers.TypeInvalidRequestError,
				Param:   verr.Param,
			},
		})
		return
	}
	handlers.AbortWithError(c, http.StatusBadRequest, handlers.TypeInvalidRequestError, err.Error())
}
