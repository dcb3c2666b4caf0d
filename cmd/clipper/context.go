package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipper/internal/api"
	"clipper/internal/config"
	"clipper/internal/daemonctl"
	"clipper/internal/library"
	"clipper/internal/logging"
	"clipper/internal/toolrun"
)

// newToolRunner builds the runner used for local detect/export. Tests swap it
// for a fake so no ffmpeg process is spawned.
var newToolRunner = func(logger *slog.Logger) toolrun.Runner {
	return toolrun.Logged(toolrun.NewExecRunner(), logger)
}

type commandContext struct {
	configFlag *string
	remoteFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, remoteFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		remoteFlag: remoteFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) remote() bool {
	return c.remoteFlag != nil && *c.remoteFlag
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) service() (*api.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.log()
	return api.NewService(cfg, newToolRunner(logger), logger), nil
}

func (c *commandContext) daemonClient() (*daemonctl.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return daemonctl.NewClientFromConfig(cfg), nil
}

func (c *commandContext) withLibrary(fn func(*library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func wrapDaemonError(err error, cfg *config.Config) error {
	if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		bind := ""
		if cfg != nil {
			bind = cfg.Paths.APIBind
		}
		return fmt.Errorf("connect to daemon: nothing listening on %s; start it with `clipper serve` or drop --remote", bind)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
