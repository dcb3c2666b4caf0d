package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"clipper/internal/clip"
	"clipper/internal/export"
	"clipper/internal/testsupport"
	"clipper/internal/toolrun"
)

// writingRunner simulates ffmpeg by creating each invocation's destination.
// Extraction number failExtract (0-based, -1 for never) writes a partial file
// and exits non-zero; failConcat makes the concat step fail after writing.
func writingRunner(t *testing.T, failExtract int, failConcat bool) *testsupport.FakeRunner {
	t.Helper()
	extractions := 0
	return &testsupport.FakeRunner{Respond: func(_ int, call testsupport.Call) (toolrun.Result, error) {
		testsupport.WriteFile(t, call.Last(), 16)
		if call.Arg("-f") == "concat" {
			if failConcat {
				return toolrun.Result{ExitCode: 1, Stderr: []byte("Non-monotonous DTS in output stream")}, nil
			}
			return toolrun.Result{}, nil
		}
		index := extractions
		extractions++
		if index == failExtract {
			return toolrun.Result{ExitCode: 1, Stderr: []byte("Invalid data found when processing input")}, nil
		}
		return toolrun.Result{}, nil
	}}
}

func sampleClips() []clip.Clip {
	return []clip.Clip{
		{Source: "/media/a.mp4", Start: 0, End: 8},
		{Source: "/media/b.mp4", Start: 10, End: 15.5},
		{Source: "/media/a.mp4", Start: 17, End: 30},
	}
}

func newExporter(runner toolrun.Runner, tempDir string, opts ...export.Option) *export.Exporter {
	opts = append([]export.Option{export.WithTempDir(tempDir)}, opts...)
	return export.NewExporter(runner, opts...)
}

func TestExportSuccess(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	output := filepath.Join(t.TempDir(), "final.mp4")
	runner := writingRunner(t, -1, false)

	got, err := newExporter(runner, tempDir).Export(context.Background(), sampleClips(), output)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if got != output {
		t.Fatalf("expected %q, got %q", output, got)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if leftovers := testsupport.ListDir(t, tempDir); len(leftovers) != 0 {
		t.Fatalf("expected temp dir empty, found %v", leftovers)
	}

	calls := runner.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 3 extractions and 1 concat, got %d calls", len(calls))
	}
	first := calls[0]
	if first.Name != "ffmpeg" || first.Arg("-ss") != "0" || first.Arg("-t") != "8" || first.Arg("-i") != "/media/a.mp4" {
		t.Fatalf("unexpected extraction args %v", first.Args)
	}
	if first.Arg("-c:v") != "libx264" || first.Arg("-crf") != "23" || first.Arg("-c:a") != "aac" {
		t.Fatalf("expected re-encode settings, got %v", first.Args)
	}
	second := calls[1]
	if second.Arg("-ss") != "10" || second.Arg("-t") != "5.5" {
		t.Fatalf("expected offset+duration trim, got %v", second.Args)
	}
	concat := calls[3]
	if concat.Arg("-safe") != "0" || concat.Arg("-c") != "copy" || concat.Last() != output {
		t.Fatalf("unexpected concat args %v", concat.Args)
	}
}

func TestExportManifestPreservesOrder(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	output := filepath.Join(t.TempDir(), "final.mp4")

	var manifest string
	var extracted []string
	runner := &testsupport.FakeRunner{Respond: func(_ int, call testsupport.Call) (toolrun.Result, error) {
		if call.Arg("-f") == "concat" {
			data, err := os.ReadFile(call.Arg("-i"))
			if err != nil {
				t.Fatalf("read manifest: %v", err)
			}
			manifest = string(data)
			return toolrun.Result{}, nil
		}
		extracted = append(extracted, call.Last())
		testsupport.WriteFile(t, call.Last(), 1)
		return toolrun.Result{}, nil
	}}

	clips := []clip.Clip{
		{Source: "/media/c.mp4", Start: 3, End: 5},
		{Source: "/media/a.mp4", Start: 40, End: 41.5},
		{Source: "/media/b.mp4", Start: 1, End: 9},
		{Source: "/media/a.mp4", Start: 2, End: 4},
	}
	if _, err := newExporter(runner, tempDir).Export(context.Background(), clips, output); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(manifest), "\n")
	if len(lines) != len(clips) {
		t.Fatalf("expected %d manifest lines, got %q", len(clips), manifest)
	}
	for i, line := range lines {
		want := "file '" + extracted[i] + "'"
		if line != want {
			t.Fatalf("manifest line %d = %q, want %q", i, line, want)
		}
	}
	for i, call := range runner.Calls()[:len(clips)] {
		if call.Arg("-i") != clips[i].Source {
			t.Fatalf("extraction %d used source %q, want %q", i, call.Arg("-i"), clips[i].Source)
		}
	}
}

func TestExportExtractionFailureCleansUp(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	output := filepath.Join(t.TempDir(), "final.mp4")
	runner := writingRunner(t, 1, false)

	_, err := newExporter(runner, tempDir).Export(context.Background(), sampleClips(), output)
	if err == nil {
		t.Fatal("expected extraction failure")
	}
	var toolErr *clip.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *clip.ToolError, got %T: %v", err, err)
	}
	if toolErr.ClipIndex != 1 {
		t.Fatalf("expected clip index 1, got %d", toolErr.ClipIndex)
	}
	if !strings.Contains(toolErr.Diagnostic, "Invalid data") {
		t.Fatalf("expected diagnostic carried, got %q", toolErr.Diagnostic)
	}
	if clip.Kind(err) != clip.KindToolInvocation {
		t.Fatalf("expected tool invocation kind, got %s", clip.Kind(err))
	}
	if leftovers := testsupport.ListDir(t, tempDir); len(leftovers) != 0 {
		t.Fatalf("expected zero temporary artifacts, found %v", leftovers)
	}
	if len(runner.Calls()) != 2 {
		t.Fatalf("expected remaining clips skipped, got %d calls", len(runner.Calls()))
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err %v", err)
	}
}

func TestExportConcatFailureCleansUp(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	output := filepath.Join(t.TempDir(), "final.mp4")
	runner := writingRunner(t, -1, true)

	_, err := newExporter(runner, tempDir).Export(context.Background(), sampleClips(), output)
	var toolErr *clip.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *clip.ToolError, got %v", err)
	}
	if toolErr.ClipIndex != -1 || toolErr.Operation != "concatenate" {
		t.Fatalf("unexpected concat error %+v", toolErr)
	}
	if !strings.Contains(err.Error(), "Non-monotonous DTS") {
		t.Fatalf("expected tool diagnostic in error, got %v", err)
	}
	if leftovers := testsupport.ListDir(t, tempDir); len(leftovers) != 0 {
		t.Fatalf("expected zero temporary artifacts, found %v", leftovers)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("partial output should be left in place by default: %v", err)
	}
}

func TestExportConcatFailureRemovesPartialOutputWhenEnabled(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	outDir := t.TempDir()
	fresh := filepath.Join(outDir, "fresh.mp4")
	existing := filepath.Join(outDir, "existing.mp4")
	testsupport.WriteFile(t, existing, 4)

	exporter := newExporter(writingRunner(t, -1, true), tempDir, export.WithRemovePartialOutput(true))
	if _, err := exporter.Export(context.Background(), sampleClips(), fresh); err == nil {
		t.Fatal("expected concat failure")
	}
	if _, err := os.Stat(fresh); !os.IsNotExist(err) {
		t.Fatalf("expected partial output removed, stat err %v", err)
	}

	exporter = newExporter(writingRunner(t, -1, true), tempDir, export.WithRemovePartialOutput(true))
	if _, err := exporter.Export(context.Background(), sampleClips(), existing); err == nil {
		t.Fatal("expected concat failure")
	}
	if _, err := os.Stat(existing); err != nil {
		t.Fatalf("pre-existing output must not be removed: %v", err)
	}
}

func TestExportEmptyListWritesNothing(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	output := filepath.Join(t.TempDir(), "final.mp4")
	runner := &testsupport.FakeRunner{}

	_, err := newExporter(runner, tempDir).Export(context.Background(), nil, output)
	if !errors.Is(err, clip.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, statErr := os.Stat(tempDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected temp dir not created, stat err %v", statErr)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output, stat err %v", statErr)
	}
	if len(runner.Calls()) != 0 {
		t.Fatalf("expected no tool invocations, got %v", runner.Calls())
	}
}

func TestExportRejectsInvalidClip(t *testing.T) {
	runner := &testsupport.FakeRunner{}
	clips := []clip.Clip{{Source: "a.mp4", Start: 5, End: 5}}
	_, err := newExporter(runner, t.TempDir()).Export(context.Background(), clips, "out.mp4")
	if !errors.Is(err, clip.ErrSerialization) {
		t.Fatalf("expected serialization error, got %v", err)
	}
	if len(runner.Calls()) != 0 {
		t.Fatal("expected no tool invocations for invalid input")
	}
}

func TestExportRerunOverwritesWithoutOrphans(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	output := filepath.Join(t.TempDir(), "final.mp4")
	runner := writingRunner(t, -1, false)
	exporter := newExporter(runner, tempDir)

	for i := 0; i < 2; i++ {
		if _, err := exporter.Export(context.Background(), sampleClips(), output); err != nil {
			t.Fatalf("run %d: Export returned error: %v", i, err)
		}
	}
	if leftovers := testsupport.ListDir(t, tempDir); len(leftovers) != 0 {
		t.Fatalf("expected no orphan artifacts, found %v", leftovers)
	}
	concats := 0
	for _, call := range runner.Calls() {
		if call.Arg("-f") == "concat" {
			concats++
			if call.Arg("-y") != output {
				t.Fatalf("expected overwrite flag before output, got %v", call.Args)
			}
		}
	}
	if concats != 2 {
		t.Fatalf("expected 2 concatenations, got %d", concats)
	}
}

func TestExportRunsUseDistinctArtifactNames(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	runner := writingRunner(t, -1, false)
	exporter := newExporter(runner, tempDir)
	clips := sampleClips()[:1]

	for i := 0; i < 2; i++ {
		if _, err := exporter.Export(context.Background(), clips, filepath.Join(t.TempDir(), "out.mp4")); err != nil {
			t.Fatalf("Export returned error: %v", err)
		}
	}
	calls := runner.Calls()
	if calls[0].Last() == calls[2].Last() {
		t.Fatalf("expected unique artifact per run, both used %q", calls[0].Last())
	}
	base := filepath.Base(calls[0].Last())
	if !strings.HasPrefix(base, "clip_") || !strings.HasSuffix(base, "_0.mp4") {
		t.Fatalf("unexpected artifact name %q", base)
	}
}

func TestExportCancelledBeforeStartCleansUp(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "tmp")
	ctx, cancel := context.WithCancel(context.Background())
	runner := &testsupport.FakeRunner{Respond: func(_ int, call testsupport.Call) (toolrun.Result, error) {
		testsupport.WriteFile(t, call.Last(), 1)
		cancel()
		return toolrun.Result{}, nil
	}}

	_, err := newExporter(runner, tempDir).Export(ctx, sampleClips(), filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, context.Canceled) || clip.Kind(err) != clip.KindCanceled {
		t.Fatalf("expected classified cancellation error, got %v (kind %q)", err, clip.Kind(err))
	}
	if len(runner.Calls()) != 1 {
		t.Fatalf("expected extraction to stop after cancellation, got %d calls", len(runner.Calls()))
	}
	if leftovers := testsupport.ListDir(t, tempDir); len(leftovers) != 0 {
		t.Fatalf("expected cleanup after cancellation, found %v", leftovers)
	}
}

func TestExtractArgsAndManifestQuoting(t *testing.T) {
	c := clip.Clip{Source: "in.mov", Start: 1.25, End: 3.75}
	got := export.ExtractArgs(c, "/tmp/out.mp4", export.DefaultSettings())
	want := []string{
		"-hide_banner", "-nostdin",
		"-ss", "1.25", "-t", "2.5", "-i", "in.mov",
		"-c:v", "libx264", "-preset", "fast", "-crf", "23",
		"-c:a", "aac", "-b:a", "192k",
		"-y", "/tmp/out.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args\n got %v\nwant %v", got, want)
	}

	tempDir := filepath.Join(t.TempDir(), "it's here")
	var manifest string
	runner := &testsupport.FakeRunner{Respond: func(_ int, call testsupport.Call) (toolrun.Result, error) {
		if call.Arg("-f") == "concat" {
			data, _ := os.ReadFile(call.Arg("-i"))
			manifest = string(data)
		}
		return toolrun.Result{}, nil
	}}
	if _, err := newExporter(runner, tempDir).Export(context.Background(), []clip.Clip{c}, filepath.Join(t.TempDir(), "o.mp4")); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if !strings.Contains(manifest, `it'\''s here`) {
		t.Fatalf("expected escaped quote in manifest, got %q", manifest)
	}
}
