package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"clipper/internal/config"
	"clipper/internal/testsupport"
	"clipper/internal/toolrun"
)

type cliTestEnv struct {
	cfg        *config.Config
	runner     *testsupport.FakeRunner
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a config file pointing every path into a temp dir,
// with the daemon bind on a closed port, and swaps the tool runner for a fake.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"CLIPPER_FFMPEG", "CLIPPER_FFPROBE", "CLIPPER_TEMP_DIR", "CLIPPER_API_TOKEN"} {
		t.Setenv(key, "")
	}
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg.Paths.APIBind = ln.Addr().String()
	_ = ln.Close()

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	runner := &testsupport.FakeRunner{}
	previous := newToolRunner
	newToolRunner = func(*slog.Logger) toolrun.Runner { return runner }
	t.Cleanup(func() { newToolRunner = previous })

	return &cliTestEnv{
		cfg:        cfg,
		runner:     runner,
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
temp_dir = %q
log_dir = %q
library_db = %q
api_bind = %q

[tools]
ffmpeg = "ffmpeg"
ffprobe = "ffprobe"
warmup = false

[logging]
level = "error"
`,
		cfg.Paths.TempDir,
		cfg.Paths.LogDir,
		cfg.Paths.LibraryDB,
		cfg.Paths.APIBind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, "", append([]string{"--config", env.configPath}, args...)...)
}

func (env *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := env.run(t, args...)
	if err != nil {
		t.Fatalf("clipper %s: %v (stderr: %s)", strings.Join(args, " "), err, stderr)
	}
	return out
}

func runCLIWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// lockedBuffer is a bytes.Buffer safe to read while a command writes to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
