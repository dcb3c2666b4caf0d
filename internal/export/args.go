package export

import (
	"strconv"
	"strings"

	"clipper/internal/clip"
)

// Settings is the re-encode applied to every extracted clip. Extraction
// always re-encodes because arbitrary cut points rarely fall on key frames.
type Settings struct {
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
	// Extension is the container suffix for temporary clip artifacts.
	Extension string
}

// DefaultSettings returns a moderate-quality H.264/AAC configuration.
func DefaultSettings() Settings {
	return Settings{
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          23,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		Extension:    ".mp4",
	}
}

// ExtractArgs cuts c from its source into dest. The range is expressed as a
// start offset plus a duration, which is how ffmpeg trims input.
func ExtractArgs(c clip.Clip, dest string, s Settings) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-ss", formatSeconds(c.Start),
		"-t", formatSeconds(c.Duration()),
		"-i", c.Source,
		"-c:v", s.VideoCodec,
	}
	if s.Preset != "" {
		args = append(args, "-preset", s.Preset)
	}
	args = append(args, "-crf", strconv.Itoa(s.CRF), "-c:a", s.AudioCodec)
	if s.AudioBitrate != "" {
		args = append(args, "-b:a", s.AudioBitrate)
	}
	return append(args, "-y", dest)
}

// ConcatArgs joins the artifacts listed in manifest into output without
// re-encoding. -safe 0 allows absolute paths in the manifest.
func ConcatArgs(manifest, output string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		"-y", output,
	}
}

// manifestContent renders artifact paths in the concat demuxer's
// `file '<path>'` syntax, one per line, in the given order.
func manifestContent(artifacts []string) string {
	var b strings.Builder
	for _, path := range artifacts {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(path, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
