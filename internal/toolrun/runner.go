package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"clipper/internal/logging"
)

// Result captures everything an external process produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// StdoutText returns stdout decoded as UTF-8, replacing invalid sequences.
func (r Result) StdoutText() string { return DecodeText(r.Stdout) }

// StderrText returns stderr decoded as UTF-8, replacing invalid sequences.
func (r Result) StderrText() string { return DecodeText(r.Stderr) }

// Runner executes a named external process and returns its captured output.
//
// A non-nil error means the process could not be run to completion (spawn
// failure or context cancellation). A process that ran but exited non-zero is
// reported through Result.ExitCode with a nil error.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (Result, error)
}

// ExecRunner runs processes with os/exec. The zero value is ready to use and
// imposes no timeout beyond the caller's context.
type ExecRunner struct{}

// NewExecRunner returns the os/exec backed Runner.
func NewExecRunner() ExecRunner { return ExecRunner{} }

func (ExecRunner) Run(ctx context.Context, name string, args []string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{ExitCode: -1}, errors.New("run: empty command")
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("run %s: %w", name, ctxErr)
		}
		return result, nil
	}
	result.ExitCode = -1
	return result, fmt.Errorf("run %s: %w", name, err)
}

type loggedRunner struct {
	next   Runner
	logger *slog.Logger
}

// Logged wraps runner so each invocation is logged at debug level with its
// arguments, exit status, and elapsed time.
func Logged(runner Runner, logger *slog.Logger) Runner {
	if logger == nil {
		return runner
	}
	return &loggedRunner{next: runner, logger: logger}
}

func (r *loggedRunner) Run(ctx context.Context, name string, args []string) (Result, error) {
	started := time.Now()
	result, err := r.next.Run(ctx, name, args)
	attrs := []logging.Attr{
		logging.String("tool", name),
		logging.String("args", strings.Join(args, " ")),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WithContext(ctx, r.logger).Debug("tool invocation", logging.Args(attrs...)...)
	return result, err
}
