// Package openai translates between the OpenAI chat-completions wire format
// and Claude Code CLI invocations. Requests are parsed into typed structs and
// validated at the boundary; responses are assembled with sjson templates.
package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ccshim/claude-code-api/internal/claude"
)

// Role is the message author tag. Only the fixed set below is accepted.
type Role string

// The accepted role values.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat selects plain-text or JSON-object output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionRequest is the OpenAI chat-completions request body.
// Fields the shim does not use (temperature and friends) are accepted and
// ignored; unknown fields are ignored by the decoder.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	N              *int            `json:"n,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ValidationError reports a malformed request. The server maps it to a 400
// invalid_request_error.
type ValidationError struct {
	Message string
	Param   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(param, format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Param: param}
}

// ParseRequest decodes and validates a chat-completions request body.
func ParseRequest(raw []byte) (*ChatCompletionRequest, error) {
	var req ChatCompletionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// validate enforces the request invariants before anything reaches the CLI.
func (r *ChatCompletionRequest) validate() error {
	if r.Model == "" {
		return validationErrorf("model", "model is required")
	}
	if len(r.Messages) == 0 {
		return validationErrorf("messages", "messages must not be empty")
	}
	for i, msg := range r.Messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return validationErrorf("messages", "unsupported role %q in messages[%d]", msg.Role, i)
		}
	}
	if r.N != nil && *r.N != 1 {
		return validationErrorf("n", "only n=1 is supported")
	}
	if r.Stream {
		return validationErrorf("stream", "streaming is not supported")
	}
	return nil
}

// jsonInstruction is appended to the system prompt when the client requests
// response_format json_object.
const jsonInstruction = "You must respond with valid JSON only. Do not include any explanations, " +
	"markdown formatting, or text outside the JSON. Your entire response must be parseable by JSON.parse()."

// BuildPrompt flattens the conversation into the CLI's two prompt inputs:
// the joined system messages, and a role-tagged transcript of the user and
// assistant messages.
func BuildPrompt(messages []ChatMessage) (systemPrompt, prompt string, err error) {
	var system []string
	var transcript []string
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleUser:
			transcript = append(transcript, "User: "+msg.Content)
		case RoleAssistant:
			transcript = append(transcript, "Assistant: "+msg.Content)
		}
	}

	if len(transcript) == 0 {
		return "", "", validationErrorf("messages", "messages must contain at least one user or assistant message")
	}

	return strings.Join(system, "\n"), strings.Join(transcript, "\n\n"), nil
}

// InvocationOptions carries the configured CLI behavior knobs into the
// translation.
type InvocationOptions struct {
	AllowedTools      []string
	PermissionMode    string
	MaxThinkingTokens int
}

// ToInvocation converts a validated request into a CLI invocation descriptor.
// model must already be resolved through the alias table.
func ToInvocation(req *ChatCompletionRequest, model string, opts InvocationOptions) (claude.Invocation, error) {
	systemPrompt, prompt, err := BuildPrompt(req.Messages)
	if err != nil {
		return claude.Invocation{}, err
	}

	call := claude.Invocation{
		Prompt:            prompt,
		Model:             model,
		SystemPrompt:      systemPrompt,
		AllowedTools:      opts.AllowedTools,
		PermissionMode:    opts.PermissionMode,
		MaxThinkingTokens: opts.MaxThinkingTokens,
		MaxOutputTokens:   req.MaxTokens,
	}

	if req.WantsJSON() {
		call.AppendSystemPrompt = jsonInstruction
	}

	return call, nil
}

// WantsJSON reports whether the client asked for a JSON-object response.
func (r *ChatCompletionRequest) WantsJSON() bool {
	return r.ResponseFormat != nil && r.ResponseFormat.Type == "json_object"
}
