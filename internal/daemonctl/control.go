package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"clipper/internal/api"
	"clipper/internal/config"
	"clipper/internal/preflight"
)

// PIDPath returns the pid file clipperd writes into the log directory.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "clipperd.pid")
}

// LockPath returns the single-instance lock file for the log directory.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "clipperd.lock")
}

// NewClientFromConfig builds a client for the configured bind address and token.
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(cfg.Paths.APIBind, cfg.Paths.APIToken)
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int
	Signalled  bool
	ForcedKill bool
}

// ReadPID reads a pid file. A missing file yields 0 and no error.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daemon pid file %q: %w", pidPath, err)
	}
	pidStr := strings.TrimSpace(string(data))
	if pidStr == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon pid file %q holds %q", pidPath, pidStr)
	}
	return pid, nil
}

// Stop sends SIGTERM to the daemon named by the pid file and waits up to
// gracePeriod for it to exit, then kills it and removes the pid and lock files.
func Stop(ctx context.Context, cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	if cfg == nil {
		return StopResult{}, errors.New("configuration not available")
	}
	pidPath := PIDPath(cfg)
	pid, err := ReadPID(pidPath)
	if err != nil {
		return StopResult{}, err
	}
	if pid == 0 {
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			removeRuntimeFiles(pidPath, LockPath(cfg))
			return StopResult{PID: pid}, ErrDaemonNotRunning
		}
		return StopResult{}, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}
	result := StopResult{PID: pid, Signalled: true}

	if waitForExit(ctx, pid, gracePeriod) {
		return result, nil
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	removeRuntimeFiles(pidPath, LockPath(cfg))
	result.ForcedKill = true
	return result, nil
}

func waitForExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
	return !processAlive(pid)
}

func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func removeRuntimeFiles(pidPath, lockPath string) {
	_ = os.Remove(pidPath)
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
}

// BuildStatusSnapshot returns the daemon's own status when it answers, and
// otherwise an offline snapshot built from local dependency and preflight
// checks.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config, client *Client) (*api.StatusResponse, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	if client != nil {
		queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		resp, err := client.Status(queryCtx)
		cancel()
		if err == nil && resp != nil {
			return resp, nil
		}
		var remote *RemoteError
		if errors.As(err, &remote) {
			return nil, err
		}
	}

	return &api.StatusResponse{
		Running:      false,
		APIBind:      cfg.Paths.APIBind,
		TempDir:      cfg.Paths.TempDir,
		LockPath:     LockPath(cfg),
		Dependencies: api.FromDependencyStatuses(preflight.CheckSystemDeps(cfg)),
		Checks:       api.FromPreflightResults(preflight.RunAll(ctx, cfg, nil)),
	}, nil
}
