package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/config"
	"clipper/internal/toolrun"
)

type stubRunner struct {
	results map[string]toolrun.Result
	err     error
}

func (s stubRunner) Run(_ context.Context, name string, _ []string) (toolrun.Result, error) {
	if s.err != nil {
		return toolrun.Result{ExitCode: -1}, s.err
	}
	return s.results[name], nil
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckToolVersion(t *testing.T) {
	runner := stubRunner{results: map[string]toolrun.Result{
		"ffmpeg": {Stdout: []byte("ffmpeg version 7.1 Copyright (c) 2000-2024\nbuilt with gcc\n")},
		"broken": {ExitCode: 1},
	}}

	ok := CheckToolVersion(context.Background(), runner, "FFmpeg", "ffmpeg")
	if !ok.Passed || ok.Detail != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("unexpected result %+v", ok)
	}
	bad := CheckToolVersion(context.Background(), runner, "Broken", "broken")
	if bad.Passed || !strings.Contains(bad.Detail, "exit status 1") {
		t.Fatalf("expected failure, got %+v", bad)
	}
	unset := CheckToolVersion(context.Background(), runner, "Unset", " ")
	if unset.Passed {
		t.Fatal("expected failure for empty binary")
	}
	spawn := CheckToolVersion(context.Background(), stubRunner{err: errors.New("not found")}, "FFmpeg", "ffmpeg")
	if spawn.Passed {
		t.Fatal("expected failure for spawn error")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_DirectoriesOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.LibraryDB = filepath.Join(t.TempDir(), "library.db")

	results := RunAll(context.Background(), &cfg, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestRunAll_IncludesToolsWhenRunnerGiven(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.LibraryDB = ""
	runner := stubRunner{results: map[string]toolrun.Result{
		"ffmpeg":  {Stdout: []byte("ffmpeg version 7\n")},
		"ffprobe": {ExitCode: 127},
	}}

	results := RunAll(context.Background(), &cfg, runner)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 2 || failed[0].Name != "Log directory" || failed[1].Name != "FFprobe" {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestProbeMedia(t *testing.T) {
	source := filepath.Join(t.TempDir(), "take.mp4")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := stubRunner{results: map[string]toolrun.Result{
		"ffprobe": {Stdout: []byte(`{"streams":[{"codec_type":"video"},{"codec_type":"audio"}],"format":{"format_name":"mov,mp4","duration":"12.5"}}`)},
	}}

	probe := ProbeMedia(context.Background(), runner, "ffprobe", source)
	if !probe.Found || !probe.Readable || probe.Duration != 12.5 || probe.Audio != 1 {
		t.Fatalf("unexpected probe %+v", probe)
	}
	if !strings.Contains(probe.Detail(), "1 video / 1 audio") {
		t.Fatalf("unexpected detail %q", probe.Detail())
	}

	missing := ProbeMedia(context.Background(), runner, "ffprobe", filepath.Join(t.TempDir(), "nope.mp4"))
	if missing.Found || !strings.Contains(missing.Detail(), "not found") {
		t.Fatalf("expected not found probe, got %+v", missing)
	}
}
