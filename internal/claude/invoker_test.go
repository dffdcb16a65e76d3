package claude

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub installs a fake claude binary that runs the given shell body.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

const successResult = `{"type":"result","subtype":"success","is_error":false,"result":"4","session_id":"sess-123","usage":{"input_tokens":12,"output_tokens":3}}`

func TestRunSuccess(t *testing.T) {
	stub := writeStub(t, `echo '`+successResult+`'`)
	inv := NewInvoker(stub, time.Minute)

	result, err := inv.Run(context.Background(), Invocation{Prompt: "User: 2+2?", Model: ModelStub})
	require.NoError(t, err)

	assert.Equal(t, "4", result.Text)
	assert.Equal(t, "sess-123", result.SessionID)
	assert.True(t, result.HasUsage)
	assert.Equal(t, 12, result.InputTokens)
	assert.Equal(t, 3, result.OutputTokens)
}

func TestRunWithoutUsage(t *testing.T) {
	stub := writeStub(t, `echo '{"type":"result","subtype":"success","is_error":false,"result":"hello","session_id":"s"}'`)
	inv := NewInvoker(stub, time.Minute)

	result, err := inv.Run(context.Background(), Invocation{Prompt: "User: hi", Model: ModelStub})
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Text)
	assert.False(t, result.HasUsage)
}

func TestRunNonZeroExit(t *testing.T) {
	stub := writeStub(t, `echo "boom" >&2; exit 3`)
	inv := NewInvoker(stub, time.Minute)

	_, err := inv.Run(context.Background(), Invocation{Prompt: "User: hi", Model: ModelStub})
	require.Error(t, err)

	var upstream *Error
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Message, "boom")
}

func TestRunErrorResult(t *testing.T) {
	stub := writeStub(t, `echo '{"type":"result","subtype":"error_during_execution","is_error":true,"result":"credit exhausted"}'`)
	inv := NewInvoker(stub, time.Minute)

	_, err := inv.Run(context.Background(), Invocation{Prompt: "User: hi", Model: ModelStub})
	require.Error(t, err)

	var upstream *Error
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Message, "credit exhausted")
}

func TestRunUnparsableOutput(t *testing.T) {
	stub := writeStub(t, `echo 'not json at all'`)
	inv := NewInvoker(stub, time.Minute)

	_, err := inv.Run(context.Background(), Invocation{Prompt: "User: hi", Model: ModelStub})
	require.Error(t, err)

	var upstream *Error
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Message, "unparsable")
}

func TestRunKillsProcessOnTimeout(t *testing.T) {
	stub := writeStub(t, `sleep 30`)
	inv := NewInvoker(stub, 100*time.Millisecond)

	start := time.Now()
	_, err := inv.Run(context.Background(), Invocation{Prompt: "User: hi", Model: ModelStub})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, elapsed, 10*time.Second, "subprocess must be killed, not awaited to natural completion")
}

func TestRunKillsProcessOnCancellation(t *testing.T) {
	stub := writeStub(t, `sleep 30`)
	inv := NewInvoker(stub, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := inv.Run(ctx, Invocation{Prompt: "User: hi", Model: ModelStub})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 10*time.Second, "subprocess must be killed on client disconnect")
}

func TestBuildArgs(t *testing.T) {
	args := buildArgs(Invocation{
		Prompt:             "User: hi",
		Model:              ModelStub,
		SystemPrompt:       "be terse",
		AppendSystemPrompt: "answer in JSON",
		AllowedTools:       []string{"Read", "Grep"},
		PermissionMode:     "bypassPermissions",
	})

	assert.Equal(t, []string{
		"--print", "User: hi",
		"--output-format", "json",
		"--model", ModelStub,
		"--max-turns", "1",
		"--system-prompt", "be terse",
		"--append-system-prompt", "answer in JSON",
		"--allowedTools", "Read,Grep",
		"--permission-mode", "bypassPermissions",
	}, args)
}

func TestBuildArgsMinimal(t *testing.T) {
	args := buildArgs(Invocation{Prompt: "User: hi", Model: ModelStub})

	assert.Equal(t, []string{
		"--print", "User: hi",
		"--output-format", "json",
		"--model", ModelStub,
		"--max-turns", "1",
	}, args)
}

func TestResolveBinaryConfiguredPath(t *testing.T) {
	stub := writeStub(t, `echo ok`)

	path, err := ResolveBinary(stub)
	require.NoError(t, err)
	assert.Equal(t, stub, path)
}

func TestResolveBinaryMissing(t *testing.T) {
	_, err := ResolveBinary(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestResolveBinaryNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

	_, err := ResolveBinary(path)
	assert.Error(t, err)
}

// ModelStub is a placeholder model name for invoker tests; the stub scripts
// ignore their arguments.
const ModelStub = "claude-3-5-sonnet-20241022"
