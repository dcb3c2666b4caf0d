package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"clipper/internal/config"
	"clipper/internal/deps"
	"clipper/internal/toolrun"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckToolVersion runs `<binary> -version` and reports the first line of
// output. It uses a 5-second timeout and a single attempt.
func CheckToolVersion(ctx context.Context, runner toolrun.Runner, name, binary string) Result {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "command not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := runner.Run(checkCtx, binary, []string{"-version"})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", binary, err)}
	}
	if !result.Success() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: exit status %d)", binary, result.ExitCode)}
	}
	line := firstLine(result.StdoutText())
	if line == "" {
		line = "responded"
	}
	return Result{Name: name, Passed: true, Detail: line}
}

// CheckSystemDeps evaluates the external binaries for the given config.
// Both the daemon status endpoint and the CLI status command use this to
// avoid duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.ToolRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
