package silence

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"clipper/internal/clip"
	"clipper/internal/logging"
	"clipper/internal/media/ffprobe"
	"clipper/internal/toolrun"
)

// DefaultThresholdDB is the silence level used when a request omits one.
const DefaultThresholdDB = -50

// Config controls a single analysis.
type Config struct {
	// StartOffset skips this many seconds of the source before detection.
	StartOffset float64
	// ThresholdDB is the level (negative dB) below which audio counts as silent.
	ThresholdDB int
}

// DefaultConfig returns the analysis defaults.
func DefaultConfig() Config {
	return Config{ThresholdDB: DefaultThresholdDB}
}

// Analyzer turns a media source into candidate speech clips by inverting the
// silence intervals ffmpeg reports.
type Analyzer struct {
	runner  toolrun.Runner
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithFFmpegBinary overrides the detector binary.
func WithFFmpegBinary(binary string) Option {
	return func(a *Analyzer) {
		if binary = strings.TrimSpace(binary); binary != "" {
			a.ffmpeg = binary
		}
	}
}

// WithFFprobeBinary overrides the prober binary.
func WithFFprobeBinary(binary string) Option {
	return func(a *Analyzer) {
		if binary = strings.TrimSpace(binary); binary != "" {
			a.ffprobe = binary
		}
	}
}

// WithLogger sets the analyzer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer constructs an analyzer around runner.
func NewAnalyzer(runner toolrun.Runner, opts ...Option) *Analyzer {
	a := &Analyzer{
		runner:  runner,
		ffmpeg:  "ffmpeg",
		ffprobe: ffprobe.DefaultBinary,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "silence")
	return a
}

// DetectorArgs builds the ffmpeg invocation that scans source from
// startOffset with the silencedetect filter and discards the media output.
func DetectorArgs(source string, startOffset float64, thresholdDB int) []string {
	filter := fmt.Sprintf("silencedetect=n=%ddB:d=%s", thresholdDB, formatSeconds(SilenceMinDuration))
	return []string{
		"-hide_banner",
		"-nostdin",
		"-ss", formatSeconds(startOffset),
		"-i", source,
		"-af", filter,
		"-f", "null",
		"-",
	}
}

// Analyze runs the detector and prober concurrently and derives speech clips.
// It fails only when the detector cannot run or exits unsuccessfully; zero
// silences or zero speech produce an empty or single-clip result.
func (a *Analyzer) Analyze(ctx context.Context, source string, cfg Config) ([]clip.Clip, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, clip.Wrap(clip.ErrNotFound, "detect silence", "source path is empty", nil)
	}
	if math.IsNaN(cfg.StartOffset) || math.IsInf(cfg.StartOffset, 0) || cfg.StartOffset < 0 {
		return nil, clip.Wrap(clip.ErrSerialization, "detect silence", fmt.Sprintf("invalid start offset %v", cfg.StartOffset), nil)
	}
	if cfg.ThresholdDB >= 0 {
		return nil, clip.Wrap(clip.ErrSerialization, "detect silence", fmt.Sprintf("threshold must be negative dB (got %d)", cfg.ThresholdDB), nil)
	}
	logger := logging.WithContext(ctx, a.logger).With(logging.String(logging.FieldSource, source))

	var (
		diagnostics string
		total       float64
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		result, err := a.runner.Run(groupCtx, a.ffmpeg, DetectorArgs(source, cfg.StartOffset, cfg.ThresholdDB))
		if err != nil {
			return clip.NewToolError(a.ffmpeg, "detect silence", result.ExitCode, result.StderrText(), err)
		}
		if !result.Success() {
			return clip.NewToolError(a.ffmpeg, "detect silence", result.ExitCode, result.StderrText(), nil)
		}
		diagnostics = result.StderrText()
		return nil
	})
	group.Go(func() error {
		total = ffprobe.ProbeDuration(groupCtx, a.runner, a.ffprobe, source)
		return nil
	})
	if err := group.Wait(); err != nil {
		logger.Warn("silence detection failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "silence_detect_failed"),
			logging.String(logging.FieldErrorHint, "verify the source is readable media and ffmpeg is installed"),
		)
		return nil, err
	}
	if total == 0 {
		logger.Debug("source duration unknown; trailing clip left unclamped")
	}

	periods := parsePeriods(diagnostics, cfg.StartOffset)
	for _, p := range periods {
		logger.Debug("silence period",
			logging.Float64("start", p.Start()),
			logging.Float64("end", p.End),
			logging.Float64("duration", p.Duration),
		)
	}

	clips := deriveClips(periods, source, cfg.StartOffset, total, logger)
	logger.Info("silence analysis complete",
		logging.Int("silence_periods", len(periods)),
		logging.Int("clips", len(clips)),
		logging.Float64("total_duration", total),
	)
	return clips, nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
