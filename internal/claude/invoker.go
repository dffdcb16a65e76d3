package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Invocation describes a single CLI run. It is produced by the request
// translator and consumed once.
type Invocation struct {
	// Prompt is the role-tagged conversation transcript.
	Prompt string

	// Model is the resolved concrete model identifier.
	Model string

	// SystemPrompt holds the joined system messages, if any.
	SystemPrompt string

	// AppendSystemPrompt is appended after the system prompt. Used for the
	// JSON-mode instruction.
	AppendSystemPrompt string

	// AllowedTools is the tool allowlist for this run.
	AllowedTools []string

	// PermissionMode controls the CLI permission behavior.
	PermissionMode string

	// MaxThinkingTokens bounds the model's thinking budget, via environment.
	MaxThinkingTokens int

	// MaxOutputTokens bounds the generated output, via environment.
	// Zero means the CLI default.
	MaxOutputTokens int
}

// Result is the parsed outcome of a successful CLI run.
type Result struct {
	// Text is the completion text.
	Text string

	// SessionID identifies the CLI session, for log correlation.
	SessionID string

	// InputTokens and OutputTokens are the exact counts reported by the
	// CLI. They are only meaningful when HasUsage is true.
	InputTokens  int
	OutputTokens int
	HasUsage     bool
}

// Error is returned when the CLI run fails. The server surfaces it to the
// client as an upstream error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// upstreamErrorf builds an *Error.
func upstreamErrorf(format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Invoker runs the CLI. It holds only immutable configuration and is safe
// for concurrent use; each request gets its own subprocess.
type Invoker struct {
	binary  string
	timeout time.Duration
}

// NewInvoker creates an invoker for the given binary path. timeout bounds
// every run; the subprocess is killed when it elapses.
func NewInvoker(binary string, timeout time.Duration) *Invoker {
	return &Invoker{
		binary:  binary,
		timeout: timeout,
	}
}

// Run executes the CLI once and waits for it to finish. The subprocess is
// tied to ctx: client disconnect or timeout kills it rather than leaking it.
func (inv *Invoker) Run(ctx context.Context, call Invocation) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	args := buildArgs(call)

	cmd := exec.CommandContext(runCtx, inv.binary, args...)
	cmd.Env = buildEnv(call)
	// Give the process a short grace period between Kill and Wait returning.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("running claude: model=%s prompt=%d bytes", call.Model, len(call.Prompt))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, upstreamErrorf("claude invocation timed out after %s", inv.timeout)
		}
		if errors.Is(runCtx.Err(), context.Canceled) {
			return nil, upstreamErrorf("claude invocation canceled: %v", context.Cause(runCtx))
		}
		return nil, upstreamErrorf("claude exited with an error: %v: %s", err, tail(stderr.String(), 512))
	}

	result, err := parseResult(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	log.Debugf("claude finished in %s: session=%s output=%d bytes", elapsed, result.SessionID, len(result.Text))
	return result, nil
}

// buildArgs assembles the CLI argument list for a one-shot JSON run.
func buildArgs(call Invocation) []string {
	args := []string{
		"--print", call.Prompt,
		"--output-format", "json",
		"--model", call.Model,
		"--max-turns", "1",
	}
	if call.SystemPrompt != "" {
		args = append(args, "--system-prompt", call.SystemPrompt)
	}
	if call.AppendSystemPrompt != "" {
		args = append(args, "--append-system-prompt", call.AppendSystemPrompt)
	}
	if len(call.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(call.AllowedTools, ","))
	}
	if call.PermissionMode != "" {
		args = append(args, "--permission-mode", call.PermissionMode)
	}
	return args
}

// buildEnv extends the process environment with the token budget knobs the
// CLI reads from its environment rather than from flags.
func buildEnv(call Invocation) []string {
	env := os.Environ()
	if call.MaxThinkingTokens > 0 {
		env = append(env, "MAX_THINKING_TOKENS="+strconv.Itoa(call.MaxThinkingTokens))
	}
	if call.MaxOutputTokens > 0 {
		env = append(env, "CLAUDE_CODE_MAX_OUTPUT_TOKENS="+strconv.Itoa(call.MaxOutputTokens))
	}
	return env
}

// parseResult extracts the completion text and usage counters from the CLI's
// --output-format json result document.
func parseResult(raw []byte) (*Result, error) {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, upstreamErrorf("claude produced unparsable output: %s", tail(string(raw), 256))
	}

	if root.Get("is_error").Bool() {
		msg := root.Get("result").String()
		if msg == "" {
			msg = root.Get("subtype").String()
		}
		return nil, upstreamErrorf("claude reported an error: %s", msg)
	}

	result := &Result{
		Text:      root.Get("result").String(),
		SessionID: root.Get("session_id").String(),
	}

	if usage := root.Get("usage"); usage.Exists() {
		result.InputTokens = int(usage.Get("input_tokens").Int())
		result.OutputTokens = int(usage.Get("output_tokens").Int())
		result.HasUsage = result.InputTokens > 0 || result.OutputTokens > 0
	}

	return result, nil
}

// tail returns at most n trailing bytes of s, for compact error messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
