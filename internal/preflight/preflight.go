package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"clipper/internal/config"
	"clipper/internal/toolrun"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config and, when
// runner is non-nil, confirms each tool answers -version.
func RunAll(ctx context.Context, cfg *config.Config, runner toolrun.Runner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if strings.TrimSpace(cfg.Paths.LibraryDB) != "" {
		results = append(results, CheckDirectoryAccess("Library directory", filepath.Dir(cfg.Paths.LibraryDB)))
	}

	if runner != nil {
		results = append(results,
			CheckToolVersion(ctx, runner, "FFmpeg", cfg.FFmpegBinary()),
			CheckToolVersion(ctx, runner, "FFprobe", cfg.FFprobeBinary()),
		)
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
