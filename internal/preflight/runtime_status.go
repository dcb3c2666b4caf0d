package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"clipper/internal/media/ffprobe"
	"clipper/internal/toolrun"
)

// MediaProbe reports what ffprobe sees in a source file.
type MediaProbe struct {
	Path     string
	Found    bool
	Readable bool
	Format   string
	Duration float64
	Video    int
	Audio    int
	Error    string
}

// ProbeMedia inspects path with ffprobe. Failures are captured in the
// returned probe rather than returned as errors.
func ProbeMedia(ctx context.Context, runner toolrun.Runner, binary, path string) MediaProbe {
	path = strings.TrimSpace(path)
	probe := MediaProbe{Path: path}
	if _, err := os.Stat(path); err != nil {
		probe.Error = err.Error()
		return probe
	}
	probe.Found = true

	result, err := ffprobe.Inspect(ctx, runner, binary, path)
	if err != nil {
		probe.Error = err.Error()
		return probe
	}
	probe.Readable = true
	probe.Format = result.Format.FormatName
	probe.Duration = result.DurationSeconds()
	probe.Video = result.VideoStreamCount()
	probe.Audio = result.AudioStreamCount()
	return probe
}

// Detail renders a display-friendly summary for status UIs.
func (p MediaProbe) Detail() string {
	switch {
	case !p.Found:
		return fmt.Sprintf("%s not found", p.Path)
	case !p.Readable:
		return fmt.Sprintf("%s unreadable: %s", p.Path, p.Error)
	case p.Audio == 0:
		return fmt.Sprintf("%s (%s, %.1fs) has no audio stream; silence detection will find nothing", p.Path, p.Format, p.Duration)
	default:
		return fmt.Sprintf("%s (%s, %.1fs, %d video / %d audio)", p.Path, p.Format, p.Duration, p.Video, p.Audio)
	}
}
