// Package claude runs the Claude Code CLI as a one-shot subprocess per
// request and parses its JSON result. The binary is located once at startup;
// a missing or non-executable binary is a configuration error and the server
// refuses to start.
package claude

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultBinaryName is the name looked up on PATH when no explicit path is
// configured.
const DefaultBinaryName = "claude"

// ResolveBinary locates the Claude Code CLI. configuredPath, when non-empty,
// must point at an executable file; otherwise the binary is searched on PATH.
func ResolveBinary(configuredPath string) (string, error) {
	if configuredPath != "" {
		info, err := os.Stat(configuredPath)
		if err != nil {
			return "", fmt.Errorf("claude binary not found at %s: %w", configuredPath, err)
		}
		if info.IsDir() || info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("claude binary at %s is not executable", configuredPath)
		}
		return configuredPath, nil
	}

	path, err := exec.LookPath(DefaultBinaryName)
	if err != nil {
		return "", fmt.Errorf("claude binary not found on PATH: %w", err)
	}
	return path, nil
}

// ProbeVersion asks the binary for its version. The result is informational
// only; a probe failure is logged and otherwise ignored.
func ProbeVersion(ctx context.Context, binary string) string {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, binary, "--version").Output()
	if err != nil {
		log.Debugf("claude version probe failed: %v", err)
		return ""
	}
	return strings.TrimSpace(string(out))
}
