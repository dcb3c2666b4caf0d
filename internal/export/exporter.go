package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/clip"
	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/toolrun"
)

// Exporter cuts clips out of their sources and concatenates them into one
// output file.
type Exporter struct {
	runner              toolrun.Runner
	ffmpeg              string
	tempDir             string
	settings            Settings
	removePartialOutput bool
	logger              *slog.Logger
	now                 func() time.Time
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithFFmpegBinary overrides the ffmpeg binary.
func WithFFmpegBinary(binary string) Option {
	return func(e *Exporter) {
		if binary = strings.TrimSpace(binary); binary != "" {
			e.ffmpeg = binary
		}
	}
}

// WithTempDir sets the directory that holds per-run artifacts.
func WithTempDir(dir string) Option {
	return func(e *Exporter) {
		if dir = strings.TrimSpace(dir); dir != "" {
			e.tempDir = dir
		}
	}
}

// WithSettings overrides the extraction re-encode settings.
func WithSettings(settings Settings) Option {
	return func(e *Exporter) {
		e.settings = settings
	}
}

// WithRemovePartialOutput makes a failed concatenation delete the output
// file, provided it did not exist before the export began.
func WithRemovePartialOutput(enabled bool) Option {
	return func(e *Exporter) {
		e.removePartialOutput = enabled
	}
}

// WithLogger sets the exporter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter constructs an exporter around runner.
func NewExporter(runner toolrun.Runner, opts ...Option) *Exporter {
	e := &Exporter{
		runner:   runner,
		ffmpeg:   "ffmpeg",
		tempDir:  filepath.Join(os.TempDir(), "clipper"),
		settings: DefaultSettings(),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "export")
	return e
}

// NewFromConfig builds an exporter from the [tools], [paths], and [export]
// configuration sections.
func NewFromConfig(runner toolrun.Runner, cfg *config.Config, logger *slog.Logger) *Exporter {
	return NewExporter(runner,
		WithFFmpegBinary(cfg.FFmpegBinary()),
		WithTempDir(cfg.Paths.TempDir),
		WithSettings(Settings{
			VideoCodec:   cfg.Export.VideoCodec,
			Preset:       cfg.Export.Preset,
			CRF:          cfg.Export.CRF,
			AudioCodec:   cfg.Export.AudioCodec,
			AudioBitrate: cfg.Export.AudioBitrate,
			Extension:    cfg.Export.Extension,
		}),
		WithRemovePartialOutput(cfg.Export.RemovePartialOutput),
		WithLogger(logger),
	)
}

// Export extracts every clip in order, writes a concat manifest, and joins
// the artifacts into outputPath, overwriting it. Temporary artifacts are
// removed whatever the outcome.
//
// Errors: clip.ErrNotFound for an empty clip list, clip.ErrSerialization for
// an invalid clip, *clip.ToolError (clip.ErrToolInvocation) when extraction
// or concatenation fails, and clip.ErrIO for filesystem faults.
func (e *Exporter) Export(ctx context.Context, clips []clip.Clip, outputPath string) (string, error) {
	const op = "export clips"
	if len(clips) == 0 {
		return "", clip.Wrap(clip.ErrNotFound, op, "no clips to export", nil)
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return "", clip.Wrap(clip.ErrNotFound, op, "output path is empty", nil)
	}
	if err := clip.ValidateList(clips); err != nil {
		return "", err
	}

	logger := logging.WithContext(ctx, e.logger).With(logging.String("output", outputPath))
	outputExisted := fileExists(outputPath)

	dir, err := filepath.Abs(e.tempDir)
	if err != nil {
		return "", clip.Wrap(clip.ErrIO, op, "resolve temp dir", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", clip.Wrap(clip.ErrIO, op, "create temp dir", err)
	}

	started := time.Now()
	r := newRun(dir, e.settings.Extension, e.now())
	defer r.cleanup(logger)

	artifacts := make([]string, 0, len(clips))
	for i, c := range clips {
		if err := ctx.Err(); err != nil {
			return "", clip.Wrap(clip.ErrCanceled, op, fmt.Sprintf("before clip %d", i), err)
		}
		dest := r.clipPath(i)
		result, runErr := e.runner.Run(ctx, e.ffmpeg, ExtractArgs(c, dest, e.settings))
		if runErr != nil || !result.Success() {
			toolErr := clip.NewToolError(e.ffmpeg, "extract", result.ExitCode, result.StderrText(), runErr)
			toolErr.ClipIndex = i
			logging.WarnWithContext(logger, "clip extraction failed", "clip_extract_failed",
				logging.Int(logging.FieldClipIndex, i),
				logging.String(logging.FieldSource, c.Source),
				logging.Error(toolErr),
				logging.String(logging.FieldErrorHint, "check the source path and clip bounds"),
			)
			return "", toolErr
		}
		logger.Debug("clip extracted",
			logging.Int(logging.FieldClipIndex, i),
			logging.String(logging.FieldSource, c.Source),
			logging.Float64("start", c.Start),
			logging.Float64("end", c.End),
		)
		artifacts = append(artifacts, dest)
	}

	if err := ctx.Err(); err != nil {
		return "", clip.Wrap(clip.ErrCanceled, op, "before concatenation", err)
	}
	manifest := r.manifestPath()
	if err := os.WriteFile(manifest, []byte(manifestContent(artifacts)), 0o644); err != nil {
		return "", clip.Wrap(clip.ErrIO, op, "write manifest", err)
	}

	result, runErr := e.runner.Run(ctx, e.ffmpeg, ConcatArgs(manifest, outputPath))
	if runErr != nil || !result.Success() {
		toolErr := clip.NewToolError(e.ffmpeg, "concatenate", result.ExitCode, result.StderrText(), runErr)
		if e.removePartialOutput && !outputExisted {
			if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logger.Debug("partial output removal failed", logging.Error(err))
			}
		}
		logging.WarnWithContext(logger, "concatenation failed", "clip_concat_failed",
			logging.Error(toolErr),
			logging.String(logging.FieldErrorHint, "clips may have incompatible streams; inspect the ffmpeg diagnostic"),
		)
		return "", toolErr
	}

	logger.Info("export complete",
		logging.Int("clips", len(clips)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return outputPath, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
