package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/config"
	"clipper/internal/daemonrun"
)

func TestRootCommandPassesConfigAndOptions(t *testing.T) {
	t.Setenv("CLIPPER_TEMP_DIR", "")
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := "[paths]\nlog_dir = \"" + filepath.Join(base, "logs") + "\"\napi_bind = \"127.0.0.1:0\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var (
		gotCfg  *config.Config
		gotOpts daemonrun.Options
	)
	previous := run
	run = func(_ context.Context, cfg *config.Config, opts daemonrun.Options) error {
		gotCfg = cfg
		gotOpts = opts
		return nil
	}
	t.Cleanup(func() { run = previous })

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", configPath, "--log-level", "debug"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotCfg == nil {
		t.Fatal("expected daemon to run")
	}
	if gotCfg.Paths.LogDir != filepath.Join(base, "logs") || gotCfg.Paths.APIBind != "127.0.0.1:0" {
		t.Fatalf("unexpected config paths %+v", gotCfg.Paths)
	}
	if gotOpts.LogLevel != "debug" {
		t.Fatalf("expected log level override, got %q", gotOpts.LogLevel)
	}
}

func TestRootCommandRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[export]\ncrf = 99\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	previous := run
	run = func(context.Context, *config.Config, daemonrun.Options) error {
		t.Fatal("daemon should not start with an invalid config")
		return nil
	}
	t.Cleanup(func() { run = previous })

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", configPath})
	err := cmd.Execute()
	if err == nil || !strings.HasPrefix(err.Error(), "load config") {
		t.Fatalf("expected load config error, got %v", err)
	}
}
