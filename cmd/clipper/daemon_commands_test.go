package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipper/internal/api"
	"clipper/internal/daemonctl"
)

func TestStatusOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "status")
	requireContains(t, out, "== System Status ==")
	requireContains(t, out, "[INFO] Not running")
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "Temp directory:")
	if len(env.runner.Calls()) != 0 {
		t.Fatal("expected no tool invocations without --check-tools")
	}
}

func TestStatusCheckToolsAndProbe(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "missing.mp4")

	out := env.mustRun(t, "status", "--check-tools", "--probe", missing)
	requireContains(t, out, "[OK] responded")
	requireContains(t, out, "== Media ==")
	requireContains(t, out, "missing.mp4 not found")

	var versionCalls int
	for _, call := range env.runner.Calls() {
		if len(call.Args) == 1 && call.Args[0] == "-version" {
			versionCalls++
		}
	}
	if versionCalls != 2 {
		t.Fatalf("expected ffmpeg and ffprobe -version calls, got %d", versionCalls)
	}
}

func TestStatusUsesRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.StatusResponse{
			Running: true,
			PID:     4242,
			APIBind: r.Host,
			Dependencies: []api.DependencyStatus{
				{Name: "FFmpeg", Command: "ffmpeg", Available: true},
			},
			Checks: []api.CheckResult{{Name: "Temp directory", Passed: true, Detail: "ok"}},
		})
	}))
	defer srv.Close()

	env.cfg.Paths.APIBind = strings.TrimPrefix(srv.URL, "http://")
	writeTestConfig(t, env.configPath, env.cfg)

	out := env.mustRun(t, "status")
	requireContains(t, out, "Running (pid 4242")

	out = env.mustRun(t, "status", "--json")
	var decoded api.StatusResponse
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode status json: %v", err)
	}
	if !decoded.Running || decoded.PID != 4242 || len(decoded.Dependencies) != 1 {
		t.Fatalf("unexpected status %+v", decoded)
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.mustRun(t, "stop")
	requireContains(t, out, "Daemon is not running")
}

func TestServeRunsUntilCancelled(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", env.configPath, "serve"})
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	client := daemonctl.NewClient(env.cfg.Paths.APIBind, "")
	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := client.Status(context.Background())
		if err == nil && status.Running {
			if status.PID != os.Getpid() {
				t.Fatalf("expected daemon pid %d, got %d", os.Getpid(), status.PID)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not become ready: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.LogDir, "clipperd.pid")); !os.IsNotExist(err) {
		t.Fatalf("expected pid file to be removed, stat err = %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "config", "validate")
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err := runCLIWithInput(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLIWithInput(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLIWithInput(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[analysis]\nthreshold_db = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLIWithInput(t, "", "--config", bad, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected load error, got %v", err)
	}
}
