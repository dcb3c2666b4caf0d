package silence

import (
	"log/slog"

	"clipper/internal/clip"
	"clipper/internal/logging"
)

const (
	// SilenceMinDuration is the shortest contiguous silence the detector reports.
	SilenceMinDuration = 0.8
	// EndPadding is added to speech clips that run into a following silence.
	EndPadding = 0.3
	// MinClipLength is the shortest speech clip kept.
	MinClipLength = 1.0
)

// deriveClips returns the speech intervals between periods over
// [startOffset, total]. A total of 0 means the source length is unknown and
// no upper clamp is applied.
func deriveClips(periods []period, source string, startOffset, total float64, logger *slog.Logger) []clip.Clip {
	var clips []clip.Clip
	add := func(start, end float64, pad bool) {
		if pad {
			end += EndPadding
		}
		if total > 0 && end > total {
			end = total
		}
		if start >= end || end-start < MinClipLength {
			logger.Debug("candidate discarded",
				logging.Float64("start", start),
				logging.Float64("end", end),
			)
			return
		}
		clips = append(clips, clip.Clip{Source: source, Start: start, End: end})
	}

	if len(periods) == 0 {
		if total > MinClipLength {
			add(startOffset, total, false)
		}
		return clips
	}

	add(startOffset, periods[0].Start(), false)
	for i := 0; i < len(periods)-1; i++ {
		add(periods[i].End, periods[i+1].Start(), true)
	}
	add(periods[len(periods)-1].End, total, false)
	return clips
}
