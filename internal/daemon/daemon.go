package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"clipper/internal/api"
	"clipper/internal/config"
	"clipper/internal/deps"
	"clipper/internal/logging"
	"clipper/internal/preflight"
	"clipper/internal/toolrun"
)

// Daemon serves the clip API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	runner  toolrun.Runner
	service *api.Service
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	warmup  <-chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	APIAddress   string
	LockFilePath string
	Dependencies []deps.Status
	Checks       []preflight.Result
}

// New constructs a daemon around runner.
func New(cfg *config.Config, runner toolrun.Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and tool runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "clipperd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		runner:   runner,
		service:  api.NewService(cfg, runner, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, fires the tool warm-up, and begins serving
// the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipper daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel

	for _, result := range preflight.Failed(preflight.RunAll(runCtx, d.cfg, nil)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
	if missing := deps.MissingRequired(preflight.CheckSystemDeps(d.cfg)); len(missing) > 0 {
		logging.WarnWithContext(d.logger, "required tools missing", "dependency_missing",
			logging.Any("tools", missing),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set tools.ffmpeg in the config"),
		)
	}

	if d.cfg.Tools.Warmup {
		d.warmup = toolrun.Warmup(runCtx, d.runner, d.logger, d.cfg.FFmpegBinary(), d.service.FFprobeBinary())
	}

	d.running.Store(true)
	d.logger.Info("clipper daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop stops the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if d.warmup != nil {
		<-d.warmup
		d.warmup = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("clipper daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Address returns the address the API listens on, or "" when not serving.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Service exposes the operation surface the daemon serves.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		APIAddress:   d.api.address(),
		LockFilePath: d.lockPath,
		Dependencies: preflight.CheckSystemDeps(d.cfg),
		Checks:       preflight.RunAll(ctx, d.cfg, nil),
	}
}
