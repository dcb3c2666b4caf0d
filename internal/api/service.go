package api

import (
	"context"
	"log/slog"

	"clipper/internal/clip"
	"clipper/internal/config"
	"clipper/internal/deps"
	"clipper/internal/export"
	"clipper/internal/logging"
	"clipper/internal/silence"
	"clipper/internal/toolrun"
)

// Service wires the analyzer and exporter to one configuration.
type Service struct {
	cfg      *config.Config
	ffprobe  string
	analyzer *silence.Analyzer
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewService constructs a Service. ffprobe is resolved next to a
// path-configured ffmpeg when no explicit prober is set.
func NewService(cfg *config.Config, runner toolrun.Runner, logger *slog.Logger) *Service {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	probe := deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.Tools.FFprobe)
	analyzer := silence.NewAnalyzer(runner,
		silence.WithFFmpegBinary(cfg.FFmpegBinary()),
		silence.WithFFprobeBinary(probe),
		silence.WithLogger(logger),
	)
	return &Service{
		cfg:      cfg,
		ffprobe:  probe,
		analyzer: analyzer,
		exporter: export.NewFromConfig(runner, cfg, logger),
		logger:   logging.NewComponentLogger(logger, "api"),
	}
}

// DetectSilence returns the speech clips found in sourcePath. A nil
// startOffset or thresholdDB falls back to the configured default.
func (s *Service) DetectSilence(ctx context.Context, sourcePath string, startOffset *float64, thresholdDB *int) ([]clip.Clip, error) {
	analysis := silence.Config{
		StartOffset: s.cfg.Analysis.StartOffset,
		ThresholdDB: s.cfg.Analysis.ThresholdDB,
	}
	if analysis.ThresholdDB == 0 {
		analysis.ThresholdDB = silence.DefaultThresholdDB
	}
	if startOffset != nil {
		analysis.StartOffset = *startOffset
	}
	if thresholdDB != nil {
		analysis.ThresholdDB = *thresholdDB
	}

	ctx = logging.WithOperation(ctx, "detect")
	clips, err := s.analyzer.Analyze(ctx, sourcePath, analysis)
	if err != nil {
		return nil, err
	}
	if clips == nil {
		clips = []clip.Clip{}
	}
	return clips, nil
}

// ExportClips decodes clipsJSON (a JSON array of clips) and exports it to
// destinationPath, returning the written path.
func (s *Service) ExportClips(ctx context.Context, clipsJSON []byte, destinationPath string) (string, error) {
	clips, err := clip.DecodeList(clipsJSON)
	if err != nil {
		return "", err
	}
	return s.ExportClipList(ctx, clips, destinationPath)
}

// ExportClipList exports already decoded clips.
func (s *Service) ExportClipList(ctx context.Context, clips []clip.Clip, destinationPath string) (string, error) {
	ctx = logging.WithOperation(ctx, "export")
	return s.exporter.Export(ctx, clips, destinationPath)
}

// FFprobeBinary returns the prober command the analyzer runs.
func (s *Service) FFprobeBinary() string {
	return s.ffprobe
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}
